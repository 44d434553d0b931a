package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"gorm.io/gorm"
)

// Export writes every table as <table>.bson into a zip archive on w.
func Export(ctx context.Context, db *gorm.DB, w io.Writer) error {
	zw := zip.NewWriter(w)

	exported := make([]string, 0, len(backupTableNames))
	for _, table := range backupTableNames {
		var rows []map[string]interface{}
		if err := db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			return fmt.Errorf("export %s: %w", table, err)
		}
		payload, err := encodeBSONRows(rows)
		if err != nil {
			return fmt.Errorf("encode %s: %w", table, err)
		}
		f, err := zw.Create(path.Join(backupDBDir, table+".bson"))
		if err != nil {
			return err
		}
		if _, err := f.Write(payload); err != nil {
			return err
		}
		exported = append(exported, table)
	}

	manifest, err := json.Marshal(backupManifest{
		Format:    backupFormat,
		Version:   backupFormatVersion,
		Engine:    db.Dialector.Name(),
		CreatedAt: time.Now().UTC(),
		Tables:    exported,
	})
	if err != nil {
		return err
	}
	mf, err := zw.Create(backupManifestFile)
	if err != nil {
		return err
	}
	if _, err := mf.Write(manifest); err != nil {
		return err
	}
	return zw.Close()
}
