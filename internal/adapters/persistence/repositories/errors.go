package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"libris/internal/core/domain"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers this layer distinguishes
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlDBAccessDenied     = 1044
	mysqlAccessDenied       = 1045
	mysqlTableAccessDenied  = 1142
	mysqlColumnAccessDenied = 1143
	mysqlProcAccessDenied   = 1370
)

// TranslateError maps driver errors onto the domain taxonomy:
// procedure codes become DomainError, constraint violations become
// IntegrityError, lost or refused connections become ConnectivityError.
// Anything else is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	// Already translated
	var (
		domainErr    *domain.DomainError
		integrityErr *domain.IntegrityError
		connErr      *domain.ConnectivityError
	)
	if errors.As(err, &domainErr) || errors.As(err, &integrityErr) || errors.As(err, &connErr) {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		code := int(myErr.Number)
		switch {
		case domain.IsProcedureCode(code):
			return domain.NewDomainError(code, myErr.Message)
		case code == mysqlDuplicateEntry, code == mysqlRowIsReferenced, code == mysqlNoReferencedRow:
			return &domain.IntegrityError{Code: code, Detail: myErr.Message}
		case code == mysqlAccessDenied:
			return &domain.ConnectivityError{Op: "authenticate", Err: err}
		case code == mysqlDBAccessDenied, code == mysqlTableAccessDenied,
			code == mysqlColumnAccessDenied, code == mysqlProcAccessDenied:
			return errors.Join(domain.ErrInsufficientPrivilege, err)
		}
		return err
	}

	if isConnectivity(err) {
		return &domain.ConnectivityError{Op: "query", Err: err}
	}
	return err
}

func isConnectivity(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
