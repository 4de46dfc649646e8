package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chepyr/team-tracker/internal/models"
)

// Store bundles the repositories over one connection or one transaction.
type Store struct {
	conn *sql.DB
	tx   *sql.Tx

	Users       *UserRepository
	Teams       *TeamRepository
	Memberships *MembershipRepository
	Statuses    *StatusRepository
	Labels      *LabelRepository
	Tasks       *TaskRepository
	Sessions    *SessionRepository
}

func NewStore(conn *sql.DB) *Store {
	return newStore(conn, nil, conn)
}

func newStore(conn *sql.DB, tx *sql.Tx, q DBTX) *Store {
	return &Store{
		conn:        conn,
		tx:          tx,
		Users:       NewUserRepository(q),
		Teams:       NewTeamRepository(q),
		Memberships: NewMembershipRepository(q),
		Statuses:    NewStatusRepository(q),
		Labels:      NewLabelRepository(q),
		Tasks:       NewTaskRepository(q),
		Sessions:    NewSessionRepository(q),
	}
}

// InTx runs fn inside a transaction and commits when fn returns nil. Calls
// made on a Store that is already transactional reuse the transaction.
// fn must only use the Store it is given.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newStore(s.conn, tx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// The methods below let a Store serve as the permission gate's lookup.

func (s *Store) Membership(ctx context.Context, userID, teamID int64) (*models.Membership, error) {
	return s.Memberships.Get(ctx, userID, teamID)
}

func (s *Store) IsTaskParticipant(ctx context.Context, userID, teamID int64) (bool, error) {
	return s.Tasks.HasParticipant(ctx, userID, teamID)
}

func (s *Store) LabelInUse(ctx context.Context, labelID int64) (bool, error) {
	return s.Labels.IsReferenced(ctx, labelID)
}

func (s *Store) StatusInUse(ctx context.Context, statusID int64) (bool, error) {
	return s.Statuses.IsReferenced(ctx, statusID)
}
