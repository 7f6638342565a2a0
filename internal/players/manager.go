package players

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"localdink/internal/database"
	"localdink/internal/storage"
	"localdink/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyInUse  = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Manager struct {
	logger  *slog.Logger
	db      *database.Database
	storage storage.Storage
}

func NewManager(logger *slog.Logger, db *database.Database, store storage.Storage) *Manager {
	return &Manager{logger: logger, db: db, storage: store}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Phone    util.Optional[string]
}

func (m *Manager) Register(ctx context.Context, params RegisterParams) (database.Player, error) {
	_, err := m.db.GetPlayerByEmail(ctx, params.Email)
	if err == nil {
		return database.Player{}, ErrEmailAlreadyInUse
	}
	if !errors.Is(err, database.ErrPlayerNotFound) {
		return database.Player{}, fmt.Errorf("players: failed to check existing email: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return database.Player{}, fmt.Errorf("players: failed to hash password: %w", err)
	}

	player, err := m.db.CreatePlayer(ctx, database.CreatePlayerParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: string(passwordHash),
		Phone:        params.Phone,
		Preferences:  database.DefaultPreferences(),
	})
	if err != nil {
		return database.Player{}, err
	}

	m.logger.Info("Player registered", "player_id", player.ID)
	return player, nil
}

func (m *Manager) Authenticate(ctx context.Context, email, password string) (database.Player, error) {
	player, err := m.db.GetPlayerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrPlayerNotFound) {
			return database.Player{}, ErrInvalidCredentials
		}
		return database.Player{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return database.Player{}, ErrInvalidCredentials
	}

	return player, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (database.Player, error) {
	return m.db.GetPlayerByID(ctx, id)
}

type UpdateProfileParams struct {
	Name  util.Optional[string]
	Phone util.Optional[util.Optional[string]]
}

func (m *Manager) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) error {
	return m.db.UpdatePlayerByID(ctx, id, database.UpdatePlayerParams{
		Name:  params.Name,
		Phone: params.Phone,
	})
}

func (m *Manager) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs database.Preferences) error {
	return m.db.UpdatePlayerByID(ctx, id, database.UpdatePlayerParams{
		Preferences: util.Some(prefs),
	})
}

// UploadAvatar stores the image and records its key on the profile. A
// previous avatar is removed best effort.
func (m *Manager) UploadAvatar(ctx context.Context, id uuid.UUID, filename string, content io.Reader, contentType string) (string, error) {
	player, err := m.db.GetPlayerByID(ctx, id)
	if err != nil {
		return "", err
	}

	key, err := m.storage.Store(ctx, id, filename, content, contentType)
	if err != nil {
		return "", fmt.Errorf("players: failed to store avatar: %w", err)
	}

	if err := m.db.UpdatePlayerByID(ctx, id, database.UpdatePlayerParams{
		AvatarKey: util.Some(key),
	}); err != nil {
		return "", err
	}

	if player.AvatarKey.IsSet {
		if err := m.storage.Delete(ctx, player.AvatarKey.Val); err != nil {
			m.logger.Warn("Failed to remove previous avatar", "player_id", id, "key", player.AvatarKey.Val, "error", err)
		}
	}

	return key, nil
}

func (m *Manager) AvatarURL(ctx context.Context, player database.Player) (string, error) {
	if !player.AvatarKey.IsSet {
		return "", nil
	}
	return m.storage.URL(ctx, player.AvatarKey.Val, 15*time.Minute)
}

// Delete removes the account along with its group memberships. Sessions the
// player touched keep their references; readers see placeholders instead.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.db.DeleteGroupMembershipsByPlayer(ctx, id); err != nil {
		return err
	}
	return m.db.DeletePlayerByID(ctx, id)
}
