// Package account handles registration, login credentials and profile
// updates. Registration and profile updates can also join a team.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/permission"
	"github.com/chepyr/team-tracker/internal/task"
	"github.com/chepyr/team-tracker/internal/team"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 4

type RegisterInput struct {
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Password     string `json:"password"`
	TeamName     string `json:"team_name"`
	TeamPassword string `json:"team_password"`
}

type ProfileInput struct {
	DisplayName  string `json:"display_name"`
	Password     string `json:"password"`
	TeamName     string `json:"team_name"`
	TeamPassword string `json:"team_password"`
}

type Service struct {
	store  *db.Store
	users  db.UserRepositoryInterface
	teams  *team.Manager
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store *db.Store, teams *team.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, users: store.Users, teams: teams, logger: logger, now: time.Now}
}

// Register creates the user with their individual default statuses and,
// when a team name is given, joins that team. Everything happens in one
// transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.Invalid("username", "Username is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}
	now := s.now().UTC()
	user := &models.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	var joined *models.Team
	err = s.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return apperr.Invalid("username", "Username is already taken")
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := task.SeedDefaultStatuses(ctx, tx, nil, user.ID, now); err != nil {
			return err
		}
		if strings.TrimSpace(in.TeamName) == "" {
			return nil
		}
		var err error
		joined, err = s.teams.JoinIn(ctx, tx, user, in.TeamName, in.TeamPassword)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	s.logJoined(joined, user)
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, db.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFoundf("user")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes actor's own display name or password and optionally
// joins a team. A blank password keeps the current one.
func (s *Service) UpdateProfile(ctx context.Context, actor *models.User, targetID int64, in ProfileInput) (*models.User, error) {
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := permission.CanModifyUser(actor, target).Err(); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.DisplayName); name != "" {
		target.DisplayName = name
	}
	if in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			return nil, apperr.Invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		target.PasswordHash = string(hash)
	}

	var joined *models.Team
	err = s.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Users.Update(ctx, target); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if strings.TrimSpace(in.TeamName) == "" {
			return nil
		}
		var err error
		joined, err = s.teams.JoinIn(ctx, tx, target, in.TeamName, in.TeamPassword)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logJoined(joined, target)
	return target, nil
}

func (s *Service) logJoined(team *models.Team, user *models.User) {
	if team != nil {
		s.logger.Info("member joined", "team", team.UUID, "user_id", user.ID)
	}
}

func invalidCredentials() error {
	return &apperr.Error{
		Kind:    apperr.NotAuthenticated,
		Code:    "invalid_credentials",
		Message: "Invalid username or password",
	}
}
