package sqlengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/sqlengine/internal/adapters"
)

func (e *Engine) userSelect() *goqu.SelectDataset {
	return e.builder().
		From(tblUsers).
		Select(
			goqu.C(colID),
			goqu.C(colName),
			goqu.C(colEmail),
			goqu.C(colPasswordHash),
			goqu.C(colRole),
		)
}

func (e *Engine) scanUser(rows adapters.DBRows) (core.User, error) {
	var user core.User
	var role string

	if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role); err != nil {
		e.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return core.User{}, wrapDBError(err)
	}

	user.Role = core.Role(role)

	return user, nil
}

// InsertUser creates a user account; core.ErrConflict if the email is taken.
func (e *Engine) InsertUser(ctx context.Context, user core.User) (core.User, error) {
	if err := user.Validate(); err != nil {
		return core.User{}, err
	}

	stmt := e.builder().
		Insert(tblUsers).
		Rows(goqu.Record{
			colID:           user.ID,
			colName:         user.Name,
			colEmail:        user.Email,
			colPasswordHash: user.PasswordHash,
			colRole:         string(user.Role),
		})

	if _, err := e.exec(ctx, e.db, stmt); err != nil {
		if isConflict(err) {
			return core.User{}, fmt.Errorf("%w: email %q already registered", core.ErrConflict, user.Email)
		}

		return core.User{}, err
	}

	return user, nil
}

// UpdateUser applies a selective update; core.ErrConflict if a new email is taken.
func (e *Engine) UpdateUser(ctx context.Context, id string, update storage.UserUpdate) (core.User, error) {
	record := goqu.Record{}

	if update.Name != nil {
		record[colName] = *update.Name
	}

	if update.Email != nil {
		record[colEmail] = *update.Email
	}

	if update.Role != nil {
		record[colRole] = string(*update.Role)
	}

	if update.PasswordHash != nil {
		record[colPasswordHash] = *update.PasswordHash
	}

	if len(record) == 0 {
		return e.UserByID(ctx, id)
	}

	stmt := e.builder().Update(tblUsers).Set(record).Where(goqu.C(colID).Eq(id))

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		if isConflict(err) && update.Email != nil {
			return core.User{}, fmt.Errorf("%w: email %q already registered", core.ErrConflict, *update.Email)
		}

		return core.User{}, err
	}

	if affected == 0 {
		return core.User{}, fmt.Errorf("%w: user %q", core.ErrNotFound, id)
	}

	return e.UserByID(ctx, id)
}

// DeleteUser removes a user account. Loan history referencing the account
// stays behind as history.
func (e *Engine) DeleteUser(ctx context.Context, id string) error {
	stmt := e.builder().Delete(tblUsers).Where(goqu.C(colID).Eq(id))

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("%w: user %q", core.ErrNotFound, id)
	}

	return nil
}

// UserByID returns one user account.
func (e *Engine) UserByID(ctx context.Context, id string) (core.User, error) {
	rows, err := e.query(ctx, e.db, e.userSelect().Where(goqu.C(colID).Eq(id)))
	if err != nil {
		return core.User{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return core.User{}, fmt.Errorf("%w: user %q", core.ErrNotFound, id)
	}

	return e.scanUser(rows)
}

// UserByEmail returns the user account registered under the given email.
func (e *Engine) UserByEmail(ctx context.Context, email string) (core.User, error) {
	rows, err := e.query(ctx, e.db, e.userSelect().Where(goqu.C(colEmail).Eq(email)))
	if err != nil {
		return core.User{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return core.User{}, fmt.Errorf("%w: user with email %q", core.ErrNotFound, email)
	}

	return e.scanUser(rows)
}

// ListUsers returns all user accounts ordered by name.
func (e *Engine) ListUsers(ctx context.Context) ([]core.User, error) {
	stmt := e.userSelect().Order(goqu.C(colName).Asc(), goqu.C(colEmail).Asc())

	rows, err := e.query(ctx, e.db, stmt)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(rows)

	users := make([]core.User, 0)

	for rows.Next() {
		user, scanErr := e.scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		users = append(users, user)
	}

	return users, nil
}
