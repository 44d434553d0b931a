package backup

import (
	"errors"
	"time"
)

const (
	backupRootDir        = "blogd"
	backupDBDir          = backupRootDir + "/db"
	backupManifestFile   = backupRootDir + "/manifest.json"
	backupFormat         = "blogd-bson"
	backupFormatVersion  = 1
	defaultS3KeyTemplate = "backups/{Y}/{m}/{filename}"
	defaultBackupDir     = "backups"
)

// backupTableNames is also the restore order.
var backupTableNames = []string{
	"users",
	"categories",
	"tags",
	"posts",
	"post_tags",
	"comments",
	"likes",
	"sessions",
}

var backupTableNameSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(backupTableNames))
	for _, table := range backupTableNames {
		set[table] = struct{}{}
	}
	return set
}()

type backupManifest struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Engine    string    `json:"engine"`
	CreatedAt time.Time `json:"created_at"`
	Tables    []string  `json:"tables"`
}

type backupItem struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
	Created  int64  `json:"created"`
}

type backupArtifact struct {
	Filename string
	Path     string
	Data     []byte
}

var (
	ErrInvalidArchive = errors.New("invalid backup archive")
	errBadFilename    = errors.New("invalid backup filename")
)
