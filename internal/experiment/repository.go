package experiment

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"experiment-setup/internal/errors"
	"experiment-setup/internal/logging"

	"github.com/go-sql-driver/mysql"
)

const (
	insertExperimentSQL = "INSERT INTO Experiments (UserDefinedID, Name, Description, Owner, Enabled) VALUES (?, ?, ?, ?, ?)"
	insertParameterSQL  = "INSERT INTO ExperimentParameters (ExperimentID, ParameterName, ParamValueTxt) VALUES (?, ?, ?)"
	selectIDSQL         = "SELECT ExperimentID FROM Experiments WHERE UserDefinedID = ?"
	deleteParametersSQL = "DELETE FROM ExperimentParameters WHERE ExperimentID = ?"
	deleteExperimentSQL = "DELETE FROM Experiments WHERE ExperimentID = ?"
)

const mysqlDuplicateEntry = 1062

// Repository creates and deletes experiments. Each call runs in its own transaction.
type Repository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewRepository creates a repository over an open connection
func NewRepository(db *sql.DB, logger *logging.Logger) *Repository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Repository{db: db, logger: logger}
}

// Create inserts the experiment row and its parameters, returning the generated ExperimentID
func (r *Repository) Create(ctx context.Context, cfg *Config) (id int64, err error) {
	if cfg == nil {
		return 0, errors.NewConfigError("experiment configuration is nil", nil)
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	params, err := cfg.StoredParameters()
	if err != nil {
		return 0, err
	}

	done := r.logger.LogOperationStart("create_experiment", map[string]interface{}{
		"experiment": cfg.Name(),
		"parameters": len(params),
	})
	defer func() { done(err) }()

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		info := cfg.Info
		result, execErr := r.exec(ctx, tx, insertExperimentSQL,
			cfg.Name(), info.Name, info.Description, info.Owner, info.IsEnabled())
		if execErr != nil {
			var mysqlErr *mysql.MySQLError
			if stderrors.As(execErr, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
				return errors.NewDataAccessError(fmt.Sprintf("experiment %q already exists", cfg.Name()), execErr).
					WithContext("experiment", cfg.Name())
			}
			return errors.WrapError(execErr, "failed to insert experiment")
		}

		id, execErr = result.LastInsertId()
		if execErr != nil {
			return errors.WrapError(execErr, "failed to read generated experiment id")
		}

		for _, p := range params {
			if _, execErr := r.exec(ctx, tx, insertParameterSQL, id, p.Name, p.Value); execErr != nil {
				return errors.WrapError(execErr, fmt.Sprintf("failed to insert parameter %q", p.Name))
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Delete removes the experiment named by its UserDefinedID along with its parameters
func (r *Repository) Delete(ctx context.Context, name string) (err error) {
	if name == "" {
		return errors.NewConfigError("experiment name is required", nil)
	}

	done := r.logger.LogOperationStart("delete_experiment", map[string]interface{}{
		"experiment": name,
	})
	defer func() { done(err) }()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		var id int64
		if scanErr := tx.QueryRowContext(ctx, selectIDSQL, name).Scan(&id); scanErr != nil {
			if stderrors.Is(scanErr, sql.ErrNoRows) {
				return errors.NewDataAccessError(fmt.Sprintf("experiment %q not found", name), scanErr).
					WithContext("experiment", name)
			}
			return errors.WrapError(scanErr, "failed to look up experiment")
		}

		if _, execErr := r.exec(ctx, tx, deleteParametersSQL, id); execErr != nil {
			return errors.WrapError(execErr, "failed to delete experiment parameters")
		}

		if _, execErr := r.exec(ctx, tx, deleteExperimentSQL, id); execErr != nil {
			return errors.WrapError(execErr, "failed to delete experiment")
		}

		return nil
	})
}

// inTx runs fn in a transaction, committing on success and rolling back otherwise
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if r.db == nil {
		return errors.NewDataAccessError("database connection is nil", nil)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapError(err, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
			r.logger.WithField("error", rbErr.Error()).Warn("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapError(err, "failed to commit transaction")
	}

	return nil
}

func (r *Repository) exec(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := tx.ExecContext(ctx, query, args...)

	var rows int64
	if err == nil {
		rows, _ = result.RowsAffected()
	}
	r.logger.LogSQLExecution(query, time.Since(start), rows, err)

	return result, err
}
