package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"localdink/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Court struct {
	ID        uuid.UUID
	Name      string
	Location  string
	Address   util.Optional[string]
	City      util.Optional[string]
	State     util.Optional[string]
	Zip       util.Optional[string]
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateCourtParams struct {
	Name     string
	Location string
	Address  util.Optional[string]
	City     util.Optional[string]
	State    util.Optional[string]
	Zip      util.Optional[string]
	OwnerID  uuid.UUID
}

func (db *Database) CreateCourt(ctx context.Context, params CreateCourtParams) (Court, error) {
	court := Court{
		ID:        uuid.New(),
		Name:      params.Name,
		Location:  params.Location,
		Address:   params.Address,
		City:      params.City,
		State:     params.State,
		Zip:       params.Zip,
		OwnerID:   params.OwnerID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_court (id, name, location, address, city, state, zip, owner_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		court.ID, court.Name, court.Location, court.Address, court.City, court.State, court.Zip, court.OwnerID, court.CreatedAt, court.UpdatedAt); err != nil {
		return court, fmt.Errorf("database: failed to insert court (name=%s): %w", court.Name, err)
	}
	return court, nil
}

func (db *Database) GetCourtByID(ctx context.Context, id uuid.UUID) (Court, error) {
	var court Court

	err := db.Pool.QueryRow(ctx, `SELECT id, name, location, address, city, state, zip, owner_id, created_at, updated_at FROM tbl_court WHERE id = $1`, id).Scan(
		&court.ID, &court.Name, &court.Location, &court.Address, &court.City, &court.State, &court.Zip, &court.OwnerID, &court.CreatedAt, &court.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return court, ErrCourtNotFound
		}
		return court, fmt.Errorf("database: failed to scan court: %w", err)
	}
	return court, nil
}

type ListCourtsParams struct {
	OwnerID util.Optional[uuid.UUID]
}

func (db *Database) ListCourts(ctx context.Context, params ListCourtsParams) ([]Court, error) {
	var courts []Court

	var query strings.Builder
	query.WriteString(`SELECT id, name, location, address, city, state, zip, owner_id, created_at, updated_at FROM tbl_court WHERE 1=1`)
	var args []any
	argNum := 1

	if params.OwnerID.IsSet {
		query.WriteString(fmt.Sprintf(" AND owner_id = $%d", argNum))
		args = append(args, params.OwnerID.Val)
		argNum++
	}

	query.WriteString(" ORDER BY name ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list courts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var court Court
		if err := rows.Scan(&court.ID, &court.Name, &court.Location, &court.Address, &court.City, &court.State, &court.Zip, &court.OwnerID, &court.CreatedAt, &court.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan court: %w", err)
		}
		courts = append(courts, court)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate courts: %w", err)
	}

	return courts, nil
}

type UpdateCourtParams struct {
	Name     util.Optional[string]
	Location util.Optional[string]
	Address  util.Optional[string]
	City     util.Optional[string]
	State    util.Optional[string]
	Zip      util.Optional[string]
}

func (db *Database) UpdateCourtByID(ctx context.Context, id uuid.UUID, params UpdateCourtParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_court SET `)
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf("name = $%d, ", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.Location.IsSet {
		query.WriteString(fmt.Sprintf("location = $%d, ", argNum))
		args = append(args, params.Location.Val)
		argNum++
	}
	if params.Address.IsSet {
		query.WriteString(fmt.Sprintf("address = $%d, ", argNum))
		args = append(args, params.Address.Val)
		argNum++
	}
	if params.City.IsSet {
		query.WriteString(fmt.Sprintf("city = $%d, ", argNum))
		args = append(args, params.City.Val)
		argNum++
	}
	if params.State.IsSet {
		query.WriteString(fmt.Sprintf("state = $%d, ", argNum))
		args = append(args, params.State.Val)
		argNum++
	}
	if params.Zip.IsSet {
		query.WriteString(fmt.Sprintf("zip = $%d, ", argNum))
		args = append(args, params.Zip.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update court (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourtNotFound
	}
	return nil
}

func (db *Database) DeleteCourtByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_court WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete court (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourtNotFound
	}
	return nil
}
