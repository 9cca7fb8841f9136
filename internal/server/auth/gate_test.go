package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	token  string
	claims *Claims
	err    error
	calls  int
}

func (f *fakeValidator) Validate(_ context.Context, token string) (*Claims, error) {
	f.calls++
	f.token = token
	return f.claims, f.err
}

func TestGate_NoHeaderIsAnonymous(t *testing.T) {
	v := &fakeValidator{}
	id, stage, err := NewGate(v).Authenticate(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Equal(t, StageUnauthenticated, stage)
	assert.Zero(t, v.calls)
}

func TestGate_ValidToken(t *testing.T) {
	c := &Claims{Payload: Payload{Roles: []string{"admin"}, Email: "a@b.c"}}
	c.Subject = "alice"
	c.ID = "jti-1"
	v := &fakeValidator{claims: c}

	id, stage, err := NewGate(v).Authenticate(context.Background(), "bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, StageTokenValidated, stage)
	assert.Equal(t, "abc.def.ghi", v.token)
	assert.Equal(t, "alice", id.Subject)
	assert.Equal(t, "jti-1", id.TokenID)
	assert.True(t, id.HasRole("admin"))
	assert.Same(t, c, id.Claims())
}

func TestGate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		vErr    error
		wantErr error
		calls   int
	}{
		{"basic scheme", "Basic dXNlcjpwYXNz", nil, common.ErrTokenMalformed, 0},
		{"scheme only", "Bearer", nil, common.ErrTokenMalformed, 0},
		{"empty token", "Bearer ", nil, common.ErrTokenMalformed, 0},
		{"extra parts", "Bearer a b", nil, common.ErrTokenMalformed, 0},
		{"expired", "Bearer t", common.ErrTokenExpired, common.ErrTokenExpired, 1},
		{"bad signature", "Bearer t", common.ErrInvalidSignature, common.ErrInvalidSignature, 1},
		{"revoked", "Bearer t", common.ErrTokenRevoked, common.ErrTokenRevoked, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeValidator{err: tt.vErr}
			id, stage, err := NewGate(v).Authenticate(context.Background(), tt.header)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, id)
			assert.Equal(t, StageRejected, stage)
			assert.Equal(t, tt.calls, v.calls)
		})
	}
}

func TestGate_ReportsStages(t *testing.T) {
	valid := &Claims{}
	valid.Subject = "alice"

	tests := []struct {
		name   string
		header string
		v      *fakeValidator
		want   []Stage
	}{
		{"anonymous", "", &fakeValidator{}, []Stage{StageUnauthenticated}},
		{"bad header", "Basic x", &fakeValidator{}, []Stage{StageRejected}},
		{"bad token", "Bearer t", &fakeValidator{err: common.ErrTokenExpired}, []Stage{StageTokenExtracted, StageRejected}},
		{"valid token", "Bearer t", &fakeValidator{claims: valid}, []Stage{StageTokenExtracted, StageTokenValidated}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Stage
			ctx := WithStageObserver(context.Background(), func(s Stage) { got = append(got, s) })

			_, final, _ := NewGate(tt.v).Authenticate(ctx, tt.header)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want[len(tt.want)-1], final)
		})
	}
}

func TestGate_WithTokenManager(t *testing.T) {
	m := newHMACManager(t, "k")
	tok, err := m.Issue("alice", Payload{Roles: []string{"admin"}}, 3600*time.Second)
	require.NoError(t, err)

	id, _, err := NewGate(m).Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Subject)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), id.ExpiresAt.Unix())

	_, _, err = NewGate(m).Authenticate(context.Background(), "Bearer "+flipMiddle(t, tok, 2))
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), nil)
	_, ok = IdentityFromContext(ctx)
	assert.False(t, ok)

	ctx = WithIdentity(context.Background(), &Identity{Subject: "u1"})
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.Subject)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "allowed", StageAllowed.String())
	assert.Equal(t, "rejected", StageRejected.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
