package courts

import (
	"context"
	"errors"
	"log/slog"

	"localdink/internal/database"
	"localdink/internal/util"

	"github.com/google/uuid"
)

var ErrNotOwner = errors.New("court belongs to another player")

// Store is the slice of the database the court manager depends on.
// Satisfied by *database.Database.
type Store interface {
	CreateCourt(ctx context.Context, params database.CreateCourtParams) (database.Court, error)
	GetCourtByID(ctx context.Context, id uuid.UUID) (database.Court, error)
	ListCourts(ctx context.Context, params database.ListCourtsParams) ([]database.Court, error)
	UpdateCourtByID(ctx context.Context, id uuid.UUID, params database.UpdateCourtParams) error
	DeleteCourtByID(ctx context.Context, id uuid.UUID) error
}

type Manager struct {
	logger *slog.Logger
	db     Store
}

func NewManager(logger *slog.Logger, db Store) *Manager {
	return &Manager{logger: logger, db: db}
}

type CreateParams struct {
	Name     string
	Location string
	Address  util.Optional[string]
	City     util.Optional[string]
	State    util.Optional[string]
	Zip      util.Optional[string]
}

func (m *Manager) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (database.Court, error) {
	court, err := m.db.CreateCourt(ctx, database.CreateCourtParams{
		Name:     params.Name,
		Location: params.Location,
		Address:  params.Address,
		City:     params.City,
		State:    params.State,
		Zip:      params.Zip,
		OwnerID:  ownerID,
	})
	if err != nil {
		return database.Court{}, err
	}

	m.logger.Info("Court created", "court_id", court.ID, "owner_id", ownerID)
	return court, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (database.Court, error) {
	return m.db.GetCourtByID(ctx, id)
}

func (m *Manager) List(ctx context.Context) ([]database.Court, error) {
	return m.db.ListCourts(ctx, database.ListCourtsParams{})
}

func (m *Manager) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]database.Court, error) {
	return m.db.ListCourts(ctx, database.ListCourtsParams{OwnerID: util.Some(ownerID)})
}

type UpdateParams struct {
	Name     util.Optional[string]
	Location util.Optional[string]
	Address  util.Optional[string]
	City     util.Optional[string]
	State    util.Optional[string]
	Zip      util.Optional[string]
}

func (m *Manager) Update(ctx context.Context, id, callerID uuid.UUID, params UpdateParams) error {
	court, err := m.db.GetCourtByID(ctx, id)
	if err != nil {
		return err
	}
	if court.OwnerID != callerID {
		return ErrNotOwner
	}

	return m.db.UpdateCourtByID(ctx, id, database.UpdateCourtParams{
		Name:     params.Name,
		Location: params.Location,
		Address:  params.Address,
		City:     params.City,
		State:    params.State,
		Zip:      params.Zip,
	})
}

// Delete removes the court. Sessions that referenced it hydrate with a
// placeholder from then on.
func (m *Manager) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	court, err := m.db.GetCourtByID(ctx, id)
	if err != nil {
		return err
	}
	if court.OwnerID != callerID {
		return ErrNotOwner
	}

	return m.db.DeleteCourtByID(ctx, id)
}
