package backup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func backupFilename(now time.Time) string {
	return fmt.Sprintf("backup-%s.zip", now.Format("2006-01-02T15-04-05"))
}

// cleanFilename accepts only a bare *.zip name.
func cleanFilename(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || filepath.Base(name) != name || !strings.HasSuffix(name, ".zip") {
		return "", errBadFilename
	}
	return name, nil
}

func renderBackupObjectKey(template, filename string, now time.Time) string {
	tpl := strings.TrimSpace(template)
	if tpl == "" {
		tpl = defaultS3KeyTemplate
	}
	if !strings.Contains(tpl, "{filename}") {
		tpl = strings.TrimSuffix(tpl, "/") + "/{filename}"
	}

	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{H}", now.Format("15"),
		"{M}", now.Format("04"),
		"{s}", now.Format("05"),
		"{filename}", filename,
	)

	key := replacer.Replace(tpl)
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimSpace(strings.TrimPrefix(key, "/"))
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	if key == "" {
		return filename
	}
	return key
}

// parseBackupEntry maps "blogd/db/<table>.bson" to a known table.
func parseBackupEntry(name string) (string, bool) {
	base := strings.ToLower(strings.TrimSpace(path.Base(name)))
	if !strings.HasSuffix(base, ".bson") {
		return "", false
	}
	table := strings.TrimSuffix(base, ".bson")
	if _, ok := backupTableNameSet[table]; !ok {
		return "", false
	}
	return table, true
}

func normalizeBSONValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case primitive.Null:
		return nil
	case primitive.Undefined:
		return nil
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC()
	case primitive.Decimal128:
		return v.String()
	case primitive.Binary:
		return string(v.Data)
	case []byte:
		return string(v)
	default:
		return value
	}
}

func normalizeBackupValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC()
	default:
		return value
	}
}

// encodeBSONRows concatenates one BSON document per row.
func encodeBSONRows(rows []map[string]interface{}) ([]byte, error) {
	if len(rows) == 0 {
		return []byte{}, nil
	}
	buffer := bytes.NewBuffer(nil)
	for _, row := range rows {
		doc := make(map[string]interface{}, len(row))
		for key, value := range row {
			doc[key] = normalizeBackupValue(value)
		}
		b, err := bson.Marshal(doc)
		if err != nil {
			return nil, err
		}
		buffer.Write(b)
	}
	return buffer.Bytes(), nil
}

// decodeBSONRows splits a concatenation of documents using each length prefix.
func decodeBSONRows(payload []byte) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0)
	cursor := 0
	for cursor < len(payload) {
		if cursor+4 > len(payload) {
			return nil, fmt.Errorf("%w: truncated bson payload", ErrInvalidArchive)
		}
		docLen := int(int32(binary.LittleEndian.Uint32(payload[cursor : cursor+4])))
		if docLen <= 0 || cursor+docLen > len(payload) {
			return nil, fmt.Errorf("%w: bad bson document length", ErrInvalidArchive)
		}
		var row map[string]interface{}
		if err := bson.Unmarshal(payload[cursor:cursor+docLen], &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		cursor += docLen
	}
	return rows, nil
}
