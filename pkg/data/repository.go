package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const groupSep = "]["

func joinGroups(groups []string) string {
	return strings.Join(groups, groupSep)
}

func splitGroups(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, groupSep)
}

// CreateSeries inserts s and sets s.ID. It returns ErrDuplicateRecord when a
// series with the same url already exists.
func (r *Repository) CreateSeries(s *Series) error {
	err := r.db.QueryRow(
		`INSERT INTO series (url, name, alias, following) VALUES (?, ?, ?, ?)
		 ON CONFLICT (url) DO NOTHING RETURNING id`,
		s.URL, s.Name, s.Alias(), s.Following,
	).Scan(&s.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("series %s: %w", s.URL, ErrDuplicateRecord)
	}
	if err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}
	return nil
}

func (r *Repository) GetSeriesByURL(url string) (*Series, error) {
	return r.getSeries(`SELECT id, url, name, following FROM series WHERE url = ?`, url)
}

func (r *Repository) GetSeriesByAlias(alias string) (*Series, error) {
	return r.getSeries(`SELECT id, url, name, following FROM series WHERE alias = ? ORDER BY id LIMIT 1`, alias)
}

func (r *Repository) getSeries(query string, arg any) (*Series, error) {
	var s Series
	err := r.db.QueryRow(query, arg).Scan(&s.ID, &s.URL, &s.Name, &s.Following)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("series %v: %w", arg, ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSeries returns series ordered by alias.
func (r *Repository) ListSeries(followingOnly bool) ([]*Series, error) {
	query := `SELECT id, url, name, following FROM series`
	if followingOnly {
		query += ` WHERE following`
	}
	query += ` ORDER BY alias`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Series
	for rows.Next() {
		var s Series
		if err := rows.Scan(&s.ID, &s.URL, &s.Name, &s.Following); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// SetFollowing also refreshes the stored name and alias of the series.
func (r *Repository) SetFollowing(s *Series, following bool) error {
	res, err := r.db.Exec(
		`UPDATE series SET following = ?, name = ?, alias = ? WHERE id = ?`,
		following, s.Name, s.Alias(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update series: %w", err)
	}
	if err := requireRow(res, s.URL); err != nil {
		return err
	}
	s.Following = following
	return nil
}

// SaveChapter records c under seriesID unless a record with the same url
// already exists for that series, in which case nothing changes and created
// is false. New records start as new, or ignored when ignore is set.
func (r *Repository) SaveChapter(seriesID int64, c *Chapter, ignore bool) (created bool, err error) {
	status := StatusNew
	if ignore {
		status = StatusIgnored
	}

	res, err := r.db.Exec(
		`INSERT INTO chapters (series_id, url, chapter, groups, downloaded) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (series_id, url) DO NOTHING`,
		seriesID, c.URL, c.Label, joinGroups(c.Groups), int(status),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save chapter %s: %w", c.Label, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	c.SeriesID = seriesID
	c.Status = status
	return true, nil
}

func (r *Repository) MarkDownloaded(url string) error {
	return r.setStatus(url, StatusDownloaded)
}

func (r *Repository) MarkNew(url string) error {
	return r.setStatus(url, StatusNew)
}

func (r *Repository) Ignore(url string) error {
	return r.setStatus(url, StatusIgnored)
}

func (r *Repository) setStatus(url string, status Status) error {
	res, err := r.db.Exec(`UPDATE chapters SET downloaded = ? WHERE url = ?`, int(status), url)
	if err != nil {
		return fmt.Errorf("failed to mark chapter %s: %w", status, err)
	}
	return requireRow(res, url)
}

func requireRow(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrRecordNotFound)
	}
	return nil
}

const chapterColumns = `c.id, c.series_id, s.name, c.chapter, c.groups, c.url, c.downloaded`

// GetChapters returns the chapters of a series in the order they were saved.
func (r *Repository) GetChapters(seriesID int64) ([]*Chapter, error) {
	return r.queryChapters(
		`SELECT `+chapterColumns+` FROM chapters c JOIN series s ON s.id = c.series_id
		 WHERE c.series_id = ? ORDER BY c.id`,
		seriesID,
	)
}

func (r *Repository) GetChapterByURL(url string) (*Chapter, error) {
	chapters, err := r.queryChapters(
		`SELECT `+chapterColumns+` FROM chapters c JOIN series s ON s.id = c.series_id
		 WHERE c.url = ? ORDER BY c.id LIMIT 1`,
		url,
	)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("chapter %s: %w", url, ErrRecordNotFound)
	}
	return chapters[0], nil
}

// ListChaptersByStatus returns matching chapters of followed series, grouped
// by series alias.
func (r *Repository) ListChaptersByStatus(status Status) ([]*Chapter, error) {
	return r.queryChapters(
		`SELECT `+chapterColumns+` FROM chapters c JOIN series s ON s.id = c.series_id
		 WHERE c.downloaded = ? AND s.following ORDER BY s.alias, c.id`,
		int(status),
	)
}

// CountChapters returns the total and downloaded chapter counts of a series.
func (r *Repository) CountChapters(seriesID int64) (total, downloaded int, err error) {
	err = r.db.QueryRow(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE downloaded = 1) FROM chapters WHERE series_id = ?`,
		seriesID,
	).Scan(&total, &downloaded)
	return total, downloaded, err
}

func (r *Repository) queryChapters(query string, args ...any) ([]*Chapter, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Chapter
	for rows.Next() {
		var (
			c      Chapter
			groups string
			status int
		)
		if err := rows.Scan(&c.ID, &c.SeriesID, &c.SeriesName, &c.Label, &groups, &c.URL, &status); err != nil {
			return nil, err
		}
		c.Groups = splitGroups(groups)
		c.Status = Status(status)
		out = append(out, &c)
	}
	return out, rows.Err()
}
