package offering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrOfferingNotFound = errors.New("offering not found")

type OfferingRepo interface {
	Create(ctx context.Context, offering Offering) (int, error)
	Get(ctx context.Context, id int) (Offering, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Offering, error)
	Update(ctx context.Context, offering Offering) (bool, error)
	Deactivate(ctx context.Context, id int) (bool, error)
}

type OfferingRepoImpl struct {
	db *sql.DB
}

func NewOfferingRepo(db *sql.DB) *OfferingRepoImpl {
	return &OfferingRepoImpl{db: db}
}

func (r *OfferingRepoImpl) Create(ctx context.Context, offering Offering) (int, error) {
	query := `INSERT INTO offerings (name, duration_minutes, price_cents, active) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, offering.Name, offering.DurationMinutes, offering.PriceCents, offering.Active)
	if err != nil {
		log.Errorf("failed to create offering: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not read inserted offering id: %w", err)
	}
	return int(id), nil
}

func (r *OfferingRepoImpl) Get(ctx context.Context, id int) (Offering, error) {
	query := `SELECT id, name, duration_minutes, price_cents, active FROM offerings WHERE id = ?`
	var offering Offering
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&offering.Id, &offering.Name, &offering.DurationMinutes, &offering.PriceCents, &offering.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Offering{}, ErrOfferingNotFound
	} else if err != nil {
		log.Errorf("failed to get offering: %v", err)
		return Offering{}, err
	}
	return offering, nil
}

func (r *OfferingRepoImpl) GetAll(ctx context.Context, includeInactive bool) ([]Offering, error) {
	query := `SELECT id, name, duration_minutes, price_cents, active FROM offerings`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query offerings: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	offerings := make([]Offering, 0, 10)
	for rows.Next() {
		var offering Offering
		if err := rows.Scan(&offering.Id, &offering.Name, &offering.DurationMinutes, &offering.PriceCents, &offering.Active); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		offerings = append(offerings, offering)
	}
	return offerings, rows.Err()
}

func (r *OfferingRepoImpl) Update(ctx context.Context, offering Offering) (bool, error) {
	query := `UPDATE offerings SET name = ?, duration_minutes = ?, price_cents = ?, active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, offering.Name, offering.DurationMinutes, offering.PriceCents, offering.Active, offering.Id)
	if err != nil {
		err := fmt.Errorf("could not update offering: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *OfferingRepoImpl) Deactivate(ctx context.Context, id int) (bool, error) {
	query := `UPDATE offerings SET active = 0 WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not deactivate offering: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
