package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrStaffNotFound = errors.New("staff member not found")

type StaffRepo interface {
	Create(ctx context.Context, member Staff) (int, error)
	Get(ctx context.Context, id int) (Staff, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Staff, error)
	Update(ctx context.Context, member Staff) (bool, error)
	Deactivate(ctx context.Context, id int) (bool, error)
}

type StaffRepoImpl struct {
	db *sql.DB
}

func NewStaffRepo(db *sql.DB) *StaffRepoImpl {
	return &StaffRepoImpl{db: db}
}

func (r *StaffRepoImpl) Create(ctx context.Context, member Staff) (int, error) {
	query := `INSERT INTO staff (name, role, active) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, member.Name, member.Role, member.Active)
	if err != nil {
		log.Errorf("failed to create staff member: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not read inserted staff id: %w", err)
	}
	return int(id), nil
}

func (r *StaffRepoImpl) Get(ctx context.Context, id int) (Staff, error) {
	query := `SELECT id, name, role, active FROM staff WHERE id = ?`
	var member Staff
	err := r.db.QueryRowContext(ctx, query, id).Scan(&member.Id, &member.Name, &member.Role, &member.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Staff{}, ErrStaffNotFound
	} else if err != nil {
		log.Errorf("failed to get staff member: %v", err)
		return Staff{}, err
	}
	return member, nil
}

func (r *StaffRepoImpl) GetAll(ctx context.Context, includeInactive bool) ([]Staff, error) {
	query := `SELECT id, name, role, active FROM staff`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query staff: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	members := make([]Staff, 0, 10)
	for rows.Next() {
		var member Staff
		if err := rows.Scan(&member.Id, &member.Name, &member.Role, &member.Active); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *StaffRepoImpl) Update(ctx context.Context, member Staff) (bool, error) {
	query := `UPDATE staff SET name = ?, role = ?, active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, member.Name, member.Role, member.Active, member.Id)
	if err != nil {
		err := fmt.Errorf("could not update staff member: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *StaffRepoImpl) Deactivate(ctx context.Context, id int) (bool, error) {
	query := `UPDATE staff SET active = 0 WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not deactivate staff member: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
