package httpapi

import (
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    common.BearerScheme,
		ExpiresIn:    int64(p.ExpiresIn.Seconds()),
	}
}

// userJSON never carries the password digest.
type userJSON struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type taskStatusJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

func newTaskStatusJSON(s *models.TaskStatus) taskStatusJSON {
	return taskStatusJSON{ID: s.ID, Name: s.Name, Slug: s.Slug, CreatedAt: s.CreatedAt}
}

type labelJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func newLabelJSON(l *models.Label) labelJSON {
	return labelJSON{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
}

type taskJSON struct {
	ID         int64     `json:"id"`
	Index      *int64    `json:"index"`
	CreatedAt  time.Time `json:"createdAt"`
	AssigneeID *int64    `json:"assignee_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	LabelIDs   []int64   `json:"taskLabelIds"`
}

func newTaskJSON(t *models.Task) taskJSON {
	ids := []int64(t.LabelIDs)
	if ids == nil {
		ids = []int64{}
	}
	return taskJSON{
		ID:         t.ID,
		Index:      t.Index,
		CreatedAt:  t.CreatedAt,
		AssigneeID: t.AssigneeID,
		Title:      t.Title,
		Content:    t.Content,
		Status:     t.StatusSlug,
		LabelIDs:   ids,
	}
}

func mapAll[T, J any](in []T, f func(T) J) []J {
	out := make([]J, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
