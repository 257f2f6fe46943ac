package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const moduleColumns = "name, display_name, version, status, config_json, metrics_json, last_run, updated_at"

// UpsertModule registers a module or refreshes its registration.
func (s *Store) UpsertModule(ctx context.Context, module *Module) error {
	if module == nil {
		return errors.New("module is nil")
	}
	module.UpdatedAt = time.Now().UTC()
	if module.Status == "" {
		module.Status = ModuleInactive
	}

	configJSON, err := marshalJSON(module.Config)
	if err != nil {
		return err
	}
	metricsJSON, err := marshalJSON(module.Metrics)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO modules (`+moduleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             display_name = excluded.display_name,
             version = excluded.version,
             status = excluded.status,
             config_json = excluded.config_json,
             metrics_json = excluded.metrics_json,
             last_run = excluded.last_run,
             updated_at = excluded.updated_at`,
		module.Name,
		module.DisplayName,
		nullableString(module.Version),
		module.Status,
		configJSON,
		metricsJSON,
		nullableTime(module.LastRun),
		module.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert module: %w", err)
	}
	return nil
}

// ModuleByName fetches a module registration. Missing modules return nil
// without error.
func (s *Store) ModuleByName(ctx context.Context, name string) (*Module, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE name = ?`, name)
	module, err := scanModule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get module: %w", err)
	}
	return module, nil
}

// ListModules returns every module registration ordered by name.
func (s *Store) ListModules(ctx context.Context) ([]*Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []*Module
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

// SetModuleStatus flips a module's status.
func (s *Store) SetModuleStatus(ctx context.Context, name string, status ModuleStatus) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE modules SET status = ?, updated_at = ? WHERE name = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		name,
	)
	if err != nil {
		return false, fmt.Errorf("set module status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// TouchModuleRun records a module run, merging the metrics snapshot into
// the registration.
func (s *Store) TouchModuleRun(ctx context.Context, name string, metrics map[string]any) error {
	module, err := s.ModuleByName(ctx, name)
	if err != nil {
		return err
	}
	if module == nil {
		return fmt.Errorf("module %q not registered", name)
	}
	now := time.Now().UTC()
	module.LastRun = &now
	if metrics != nil {
		module.Metrics = metrics
	}
	return s.UpsertModule(ctx, module)
}

func scanModule(scanner interface{ Scan(dest ...any) error }) (*Module, error) {
	var (
		name       string
		display    string
		version    sql.NullString
		status     string
		configRaw  sql.NullString
		metricsRaw sql.NullString
		lastRunRaw sql.NullString
		updatedRaw string
	)
	if err := scanner.Scan(&name, &display, &version, &status, &configRaw, &metricsRaw, &lastRunRaw, &updatedRaw); err != nil {
		return nil, err
	}

	module := &Module{
		Name:        name,
		DisplayName: display,
		Version:     version.String,
		Status:      ModuleStatus(status),
	}
	if err := unmarshalInto(configRaw, &module.Config); err != nil {
		return nil, fmt.Errorf("decode module config: %w", err)
	}
	if err := unmarshalInto(metricsRaw, &module.Metrics); err != nil {
		return nil, fmt.Errorf("decode module metrics: %w", err)
	}
	if lastRunRaw.Valid {
		if lastRun, err := parseTimeString(lastRunRaw.String); err == nil {
			module.LastRun = &lastRun
		}
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		module.UpdatedAt = updated
	}
	return module, nil
}
