package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for structured logs. It never reaches clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	// Store is the driver that produced the innermost database error, if any.
	Store string           `json:"store,omitempty"`
	DB    *DatabaseFailure `json:"db,omitempty"`
}

type DatabaseFailure struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	var innermost error
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
		innermost = e
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.Store = StorePostgres
		d.DB = &DatabaseFailure{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	case errors.As(err, &pqErr):
		d.Store = StorePostgres
		d.DB = &DatabaseFailure{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	case innermost != nil && strings.Contains(innermost.Error(), "constraint failed"):
		// sqlite only reports constraint failures as text.
		d.Store = StoreSQLite
		d.DB = &DatabaseFailure{Message: innermost.Error()}
	}

	return d
}

// Fields renders the dump as logger fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.DB == nil {
		return fields
	}

	fields["db_store"] = d.Store
	fields["db_message"] = d.DB.Message
	if d.DB.Code != "" {
		fields["db_code"] = d.DB.Code
	}
	if d.DB.Constraint != "" {
		fields["db_constraint"] = d.DB.Constraint
	}
	if d.DB.Table != "" {
		fields["db_table"] = d.DB.Table
	}
	if d.DB.Column != "" {
		fields["db_column"] = d.DB.Column
	}
	if d.DB.Detail != "" {
		fields["db_detail"] = d.DB.Detail
	}
	return fields
}
