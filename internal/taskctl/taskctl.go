// Package taskctl implements the operator command line: password digests,
// RSA key generation and ad-hoc token issuance.
package taskctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/cryptox"
	"github.com/dmitrijs2005/taskmanager/internal/filex"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// stdinFd is a test seam for the terminal file descriptor.
var stdinFd = func() int { return int(os.Stdin.Fd()) }

// Run executes args (without the program name) and returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if len(args) == 0 {
		root.SetOut(stderr)
		_ = root.Usage()
		return 2
	}
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "taskctl: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand assembles the taskctl command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Task manager operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newHashCommand(),
		newKeygenCommand(),
		newTokenCommand(),
	)
	return cmd
}

// getPassword prompts on w and reads a password without echo.
func getPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func newHashCommand() *cobra.Command {
	var (
		algo string
		cost int
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Read a password without echo and print its digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(algo, cost, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&algo, "algo", "a", config.HashBcrypt, "digest algorithm: bcrypt or argon2id")
	cmd.Flags().IntVarP(&cost, "cost", "c", 10, "bcrypt cost")
	return cmd
}

func runHash(algo string, cost int, stdout, stderr io.Writer) error {
	hasher, err := cryptox.NewHasher(algo, cost)
	if err != nil {
		return err
	}

	pw, err := getPassword(stderr, "Enter password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)

	confirm, err := getPassword(stderr, "Repeat password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		return errors.New("passwords do not match")
	}
	if len(pw) == 0 {
		return errors.New("empty password")
	}

	digest, err := hasher.Hash(string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, digest)
	return nil
}

func newKeygenCommand() *cobra.Command {
	var (
		out  string
		bits int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Write an RS256 key pair as private.pem and public.pem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(out, bits, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().IntVarP(&bits, "bits", "b", 2048, "RSA modulus size")
	return cmd
}

func runKeygen(out string, bits int, stdout io.Writer) error {
	if bits < 2048 {
		return fmt.Errorf("refusing %d-bit key, use at least 2048", bits)
	}

	k, err := auth.GenerateRSAKey("primary", bits)
	if err != nil {
		return err
	}
	priv, pub, err := k.EncodePEM()
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(out)
	if err != nil {
		return err
	}
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	if err := filex.WriteFileAtomic(privPath, priv, 0o600); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(pubPath, pub, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %s\nwrote %s\n", privPath, pubPath)
	return nil
}

type tokenOptions struct {
	sub     string
	email   string
	roles   string
	ttl     time.Duration
	issuer  string
	method  string
	secret  string
	keyFile string
}

func newTokenCommand() *cobra.Command {
	var o tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd.Context(), o, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.sub, "sub", "", "subject (user id)")
	cmd.Flags().StringVar(&o.email, "email", "", "email claim")
	cmd.Flags().StringVarP(&o.roles, "roles", "r", auth.RoleUser, "comma separated roles")
	cmd.Flags().DurationVar(&o.ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&o.issuer, "issuer", "taskmanager", "issuer claim")
	cmd.Flags().StringVarP(&o.method, "method", "m", envOr("TM_SIGNING_METHOD", config.SigningMethodRS256), "signing method: HS256 or RS256")
	cmd.Flags().StringVarP(&o.secret, "secret", "s", os.Getenv("TM_SECRET_KEY"), "HS256 secret")
	cmd.Flags().StringVar(&o.keyFile, "private-key-file", "", "RS256 private key PEM file (default: RSA_PRIVATE_KEY)")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func runToken(ctx context.Context, o tokenOptions, stdout io.Writer) error {
	key, err := signingKey(o.method, o.secret, o.keyFile)
	if err != nil {
		return err
	}

	tm := auth.NewTokenManager(auth.NewKeyring(key), auth.WithIssuer(o.issuer))
	tok, err := tm.Issue(o.sub, auth.Payload{Email: o.email, Roles: splitRoles(o.roles)}, o.ttl)
	if err != nil {
		return err
	}
	if _, err := tm.Validate(ctx, tok); err != nil && o.ttl > 0 {
		return fmt.Errorf("self-check: %w", err)
	}

	fmt.Fprintln(stdout, tok)
	return nil
}

func signingKey(method, secret, keyFile string) (*auth.SigningKey, error) {
	switch strings.ToUpper(method) {
	case config.SigningMethodHS256:
		if secret == "" {
			return nil, errors.New("HS256 requires --secret or TM_SECRET_KEY")
		}
		return auth.NewHMACKey("primary", []byte(secret))
	case config.SigningMethodRS256:
		var pemBytes []byte
		if keyFile != "" {
			b, err := os.ReadFile(keyFile)
			if err != nil {
				return nil, err
			}
			pemBytes = b
		} else {
			pemBytes = []byte(os.Getenv("RSA_PRIVATE_KEY"))
		}
		if len(pemBytes) == 0 {
			return nil, errors.New("RS256 requires --private-key-file or RSA_PRIVATE_KEY")
		}
		return auth.LoadRSAKeyFromPEM("primary", pemBytes, nil)
	default:
		return nil, fmt.Errorf("unsupported signing method %q", method)
	}
}

func splitRoles(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
