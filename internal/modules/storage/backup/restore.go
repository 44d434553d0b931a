package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"
)

// Restore replaces the contents of every table found in the archive.
// Tables missing from the archive are left alone. It is all or nothing.
func Restore(ctx context.Context, db *gorm.DB, r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	entries := make(map[string]*zip.File)
	for _, file := range zr.File {
		if table, ok := parseBackupEntry(file.Name); ok {
			entries[table] = file
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: no table entries", ErrInvalidArchive)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range backupTableNames {
			file, ok := entries[table]
			if !ok {
				continue
			}
			rows, err := readEntry(file)
			if err != nil {
				return fmt.Errorf("decode %s: %w", table, err)
			}
			columns, err := loadTableColumns(tx, table)
			if err != nil {
				return fmt.Errorf("load columns of %s: %w", table, err)
			}

			// Table names come from backupTableNames, never from the archive.
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
			for idx, row := range rows {
				normalized := normalizeRestoreRow(row, columns)
				if len(normalized) == 0 {
					continue
				}
				if err := tx.Table(table).Create(normalized).Error; err != nil {
					return fmt.Errorf("insert row #%d into %s: %w", idx+1, table, err)
				}
			}
		}
		return nil
	})
}

func readEntry(file *zip.File) ([]map[string]interface{}, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return decodeBSONRows(data)
}

func loadTableColumns(db *gorm.DB, table string) (map[string]struct{}, error) {
	columnTypes, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, err
	}
	result := make(map[string]struct{}, len(columnTypes))
	for _, ct := range columnTypes {
		if name := strings.ToLower(strings.TrimSpace(ct.Name())); name != "" {
			result[name] = struct{}{}
		}
	}
	return result, nil
}

// normalizeRestoreRow drops keys the live schema does not have.
func normalizeRestoreRow(row map[string]interface{}, columns map[string]struct{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for key, value := range row {
		column := strings.ToLower(strings.TrimSpace(key))
		if _, ok := columns[column]; !ok {
			continue
		}
		out[column] = normalizeBSONValue(value)
	}
	return out
}
