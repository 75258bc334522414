package leave

import (
	"errors"
	"strings"

	leaveerrors "leavetracker/internal/leave/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapRepositoryError translates constraint violations raised by the leave
// tables into workflow errors. The overlap pre-check runs in the same tx, but
// under READ COMMITTED two concurrent submissions can both pass it; the
// excl_leave_application_period exclusion constraint is the backstop.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" && pgErr.ConstraintName == "excl_leave_application_period" {
			return leaveerrors.ErrOverlappingApplication
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "excl_leave_application_period") {
		return leaveerrors.ErrOverlappingApplication
	}

	return err
}
