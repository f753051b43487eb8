package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/clock"
	"github.com/physiokit/physiokit/pkg/email"
	"github.com/physiokit/physiokit/pkg/pg"
	"github.com/physiokit/physiokit/pkg/session"
)

// Config holds auth settings.
type Config struct {
	BcryptCost  int    `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	TrialPlanID string `env:"AUTH_TRIAL_PLAN_ID" envDefault:"trial"`
}

// RegisterInput is the public registration form.
type RegisterInput struct {
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	CabinetName string       `json:"cabinet_name"`
	CabinetType cabinet.Type `json:"cabinet_type"`
}

// Result is a signed-in identity: the user, their cabinet and a fresh
// session token.
type Result struct {
	User    *User
	Cabinet *cabinet.Cabinet
	Session *session.Session
}

// Service orchestrates registration and login. Registration is the one
// write that spans three modules, so it owns the transaction.
type Service struct {
	tx       pg.TxRunner
	users    UserStore
	cabinets cabinet.Store
	subs     *subscription.Service
	sessions *session.Manager
	mailer   email.Sender
	clock    clock.Clock
	log      *slog.Logger
	cfg      Config
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMailer enables the welcome email. Without it registration stays
// silent.
func WithMailer(m email.Sender) Option {
	return func(s *Service) { s.mailer = m }
}

func NewService(tx pg.TxRunner, users UserStore, cabinets cabinet.Store, subs *subscription.Service, sessions *session.Manager, cfg Config, opts ...Option) *Service {
	if tx == nil {
		panic("auth: TxRunner is required")
	}
	if users == nil {
		panic("auth: UserStore is required")
	}
	if cabinets == nil {
		panic("auth: cabinet store is required")
	}
	if subs == nil {
		panic("auth: subscription service is required")
	}
	if sessions == nil {
		panic("auth: session manager is required")
	}

	s := &Service{
		tx:       tx,
		users:    users,
		cabinets: cabinets,
		subs:     subs,
		sessions: sessions,
		clock:    clock.System{},
		log:      slog.New(slog.DiscardHandler),
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the cabinet, its owner account and the trial
// subscription in one transaction, then opens a session. A failure at any
// step leaves no partial tenant behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.CabinetName)
	if name == "" {
		return nil, cabinet.ErrInvalidName
	}
	if !in.CabinetType.Valid() {
		return nil, fmt.Errorf("%w: %q", cabinet.ErrInvalidType, in.CabinetType)
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	cab := &cabinet.Cabinet{
		ID:        uuid.New(),
		Name:      name,
		Type:      in.CabinetType,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &User{
		ID:           uuid.New(),
		CabinetID:    cab.ID,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.cabinets.CreateTx(ctx, tx, cab); err != nil {
			return err
		}
		if err := s.users.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		if _, err := s.subs.RegisterTrial(ctx, tx, cab.ID, s.cfg.TrialPlanID); err != nil {
			return fmt.Errorf("register trial: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID, cab.ID)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "cabinet registered",
		slog.String("cabinet_id", cab.ID.String()),
		slog.String("cabinet_type", string(cab.Type)),
	)
	s.sendWelcome(ctx, email, name)

	return &Result{User: user, Cabinet: cab, Session: sess}, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*Result, error) {
	emailAddr, err := NormalizeEmail(emailAddr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	cab, err := s.cabinets.Get(ctx, user.CabinetID)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.CabinetID)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, Cabinet: cab, Session: sess}, nil
}

// Logout invalidates the session token. Idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// sendWelcome is best effort: a mail outage must not fail registration.
func (s *Service) sendWelcome(ctx context.Context, to, cabinetName string) {
	if s.mailer == nil {
		return
	}

	msg := email.Message{
		To:      to,
		Subject: "Bienvenue sur PhysioKit",
		BodyHTML: fmt.Sprintf(
			"<p>Bonjour,</p><p>Votre cabinet <strong>%s</strong> est pr&ecirc;t. Votre essai gratuit de 7 jours commence maintenant.</p>",
			cabinetName,
		),
		Tag: "welcome",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.WarnContext(ctx, "welcome email failed", slog.Any("error", err))
	}
}
