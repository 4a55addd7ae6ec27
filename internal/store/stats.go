package store

import (
	"context"
	"os"
)

// Stats holds archive statistics.
type Stats struct {
	Backend     string `json:"backend"`
	DBPath      string `json:"db_path,omitempty"`
	DBSizeBytes int64  `json:"db_size_bytes,omitempty"`
	Entries     int    `json:"entries"`
	TotalBytes  int64  `json:"total_bytes"`
	FirstDate   string `json:"first_date,omitempty"`
	LastDate    string `json:"last_date,omitempty"`
}

// GetStats returns archive statistics. dbPath may be empty.
func GetStats(ctx context.Context, s Store, dbPath string) (*Stats, error) {
	st := &Stats{Backend: BackendName(s), DBPath: dbPath}

	if dbPath != "" {
		if info, err := os.Stat(dbPath); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	infos, err := s.List(ctx)
	if err != nil {
		return st, err
	}
	st.Entries = len(infos)
	for _, e := range infos {
		st.TotalBytes += int64(e.Size)
	}
	if len(infos) > 0 {
		st.LastDate = infos[0].Date
		st.FirstDate = infos[len(infos)-1].Date
	}
	return st, nil
}

// BackendName reports which backend s ultimately writes to.
func BackendName(s Store) string {
	for {
		switch v := s.(type) {
		case *SQLiteStore:
			return "sqlite"
		case *BlobStore:
			return "blob"
		case interface{ Unwrap() Store }:
			s = v.Unwrap()
		default:
			return "unknown"
		}
	}
}
