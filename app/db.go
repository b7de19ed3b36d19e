package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/HimangshuPronoy/LeadGen/app/config"
	"github.com/HimangshuPronoy/LeadGen/app/models"

	"github.com/lib/pq"
)

var db *sql.DB

// MustInitDB initializes the global db and panics/logs fatally on error.
func MustInitDB() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	db = d
}

// savePackage creates the package row and bulk-inserts its leads in one
// transaction, so lead_count can never drift from the rows actually saved.
func savePackage(ctx context.Context, userID string, req models.SavePackageRequest) (models.LeadPackage, error) {
	var pkg models.LeadPackage
	if db == nil {
		// Allow test runs without a backing DB.
		return pkg, nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return pkg, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO lead_packages (user_id, package_name, search_query, lead_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`, userID, req.PackageName, req.SearchQuery, len(req.Leads)).Scan(&pkg.ID, &pkg.CreatedAt)
	if err != nil {
		return pkg, err
	}
	pkg.UserID = userID
	pkg.PackageName = req.PackageName
	pkg.SearchQuery = req.SearchQuery
	pkg.LeadCount = len(req.Leads)

	// COPY the leads in one shot
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"leads",
		"user_id",
		"package_id",
		"company_name",
		"contact_name",
		"email",
		"phone",
		"website",
		"industry",
		"description",
		"score",
		"status",
	))
	if err != nil {
		return pkg, err
	}

	for _, lead := range req.Leads {
		status := lead.Status
		if status == "" {
			status = "new"
		}
		if _, err := stmt.Exec(
			userID,
			pkg.ID,
			lead.CompanyName,
			lead.ContactName,
			lead.Email,
			lead.Phone,
			lead.Website,
			lead.Industry,
			lead.Description,
			lead.Score,
			status,
		); err != nil {
			return pkg, err
		}
	}

	// finish COPY
	if _, err := stmt.Exec(); err != nil {
		return pkg, err
	}
	if err := stmt.Close(); err != nil {
		return pkg, err
	}

	if err := tx.Commit(); err != nil {
		return pkg, err
	}
	return pkg, nil
}

// listPackages returns the user's packages, newest first.
func listPackages(ctx context.Context, userID string) ([]models.LeadPackage, error) {
	if db == nil {
		return []models.LeadPackage{}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, package_name, search_query, lead_count, created_at
		FROM lead_packages
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeadPackage
	for rows.Next() {
		var p models.LeadPackage
		if err := rows.Scan(&p.ID, &p.PackageName, &p.SearchQuery, &p.LeadCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.UserID = userID
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// deletePackage removes the package row. Leads keep their package_id
// reference cleared but are not deleted; the storage slot is released by
// the caller. Returns sql.ErrNoRows when the package is not the user's.
func deletePackage(ctx context.Context, userID, packageID string) error {
	if db == nil {
		return nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM lead_packages
		WHERE id = $1 AND user_id = $2;
	`, packageID, userID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE leads
		SET package_id = NULL
		WHERE package_id = $1 AND user_id = $2;
	`, packageID, userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func listLeads(ctx context.Context, userID, packageID string) ([]models.Lead, error) {
	if db == nil {
		return []models.Lead{}, nil
	}

	q := `
		SELECT id, COALESCE(package_id::text, ''), company_name, contact_name,
		       email, phone, website, industry, COALESCE(description, ''),
		       score, status
		FROM leads
		WHERE user_id = $1
	`
	args := []any{userID}
	if packageID != "" {
		q += ` AND package_id = $2`
		args = append(args, packageID)
	}
	q += ` ORDER BY created_at DESC;`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(
			&l.ID,
			&l.PackageID,
			&l.CompanyName,
			&l.ContactName,
			&l.Email,
			&l.Phone,
			&l.Website,
			&l.Industry,
			&l.Description,
			&l.Score,
			&l.Status,
		); err != nil {
			return nil, err
		}
		l.UserID = userID
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// saveSearchHistory records one generation request. Failures here are not
// fatal to the generation flow; callers just log them.
func saveSearchHistory(ctx context.Context, userID, query string, resultsCount int) error {
	if db == nil {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO search_history (user_id, query, results_count)
		VALUES ($1, $2, $3);
	`, userID, query, resultsCount)
	return err
}

func listSearchHistory(ctx context.Context, userID string, limit int) ([]models.SearchEntry, error) {
	if db == nil {
		return []models.SearchEntry{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, query, results_count, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SearchEntry
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.ResultsCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchDashboardStats aggregates the dashboard counters in one round trip.
func fetchDashboardStats(ctx context.Context, userID string) (models.DashboardStats, error) {
	var stats models.DashboardStats
	if db == nil {
		return stats, nil
	}

	startOfMonth := time.Now().UTC()
	startOfMonth = time.Date(startOfMonth.Year(), startOfMonth.Month(), 1, 0, 0, 0, 0, time.UTC)

	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM leads WHERE user_id = $1),
			(SELECT COUNT(*) FROM lead_packages WHERE user_id = $1),
			(SELECT COUNT(*) FROM search_history WHERE user_id = $1 AND created_at >= $2),
			(SELECT COALESCE(ROUND(AVG(lead_count)), 0) FROM lead_packages WHERE user_id = $1)
	`, userID, startOfMonth).Scan(
		&stats.TotalLeads,
		&stats.LeadPackages,
		&stats.MonthlySearches,
		&stats.AvgLeadsPerPackage,
	)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
