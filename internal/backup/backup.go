// Package backup copies board archives to an S3-compatible bucket and
// restores them as new boards. A cron scheduler can run BackupAll
// periodically.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/motionboard/internal/archive"
	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/metrics"
	"github.com/dmitrijs2005/motionboard/internal/services"
)

// KeyPrefix is the object key prefix under which backups are stored.
const KeyPrefix = "backups/"

const (
	timestampLayout = "20060102T150405.000000000Z"
	contentType     = "application/zip"
)

// Backup describes one stored archive.
type Backup struct {
	Key       string
	BoardID   string
	Size      int64
	CreatedAt time.Time
}

// Service creates and restores backups.
type Service struct {
	store   ObjectStore
	bucket  string
	codec   *archive.Codec
	boards  services.BoardService
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService returns a backup Service writing into bucket. m may be nil.
func NewService(store ObjectStore, bucket string, codec *archive.Codec, boards services.BoardService, log logging.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		bucket:  bucket,
		codec:   codec,
		boards:  boards,
		log:     log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Key returns the object key of a backup of boardID taken at t.
func Key(boardID string, t time.Time) string {
	return KeyPrefix + boardID + "/" + t.UTC().Format(timestampLayout) + common.ArchiveExtension
}

// parseKey is the inverse of Key.
func parseKey(key string) (boardID string, at time.Time, ok bool) {
	rest, found := strings.CutPrefix(key, KeyPrefix)
	if !found {
		return "", time.Time{}, false
	}
	boardID, stamp, found := strings.Cut(rest, "/")
	if !found || boardID == "" {
		return "", time.Time{}, false
	}
	stamp, found = strings.CutSuffix(stamp, common.ArchiveExtension)
	if !found {
		return "", time.Time{}, false
	}
	at, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		return "", time.Time{}, false
	}
	return boardID, at, true
}

// BackupBoard exports one board and uploads the archive.
func (s *Service) BackupBoard(ctx context.Context, boardID string) (b Backup, err error) {
	defer func() { s.metrics.ObserveBackup(err) }()

	data, err := s.codec.ExportBytes(ctx, boardID)
	if err != nil {
		return Backup{}, fmt.Errorf("backup %s: %w", boardID, err)
	}

	at := s.now()
	key := Key(boardID, at)
	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return Backup{}, fmt.Errorf("backup %s: upload: %w", boardID, err)
	}

	s.log.Info(ctx, "board backed up", "board_id", boardID, "key", key, "bytes", len(data))
	return Backup{Key: key, BoardID: boardID, Size: int64(len(data)), CreatedAt: at}, nil
}

// BackupAll backs up every board. It keeps going past failures and
// returns them joined.
func (s *Service) BackupAll(ctx context.Context) ([]Backup, error) {
	boards, err := s.boards.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup all: %w", err)
	}

	var (
		done []Backup
		errs []error
	)
	for _, b := range boards {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		bk, err := s.BackupBoard(ctx, b.ID)
		if err != nil {
			s.log.Error(ctx, "board backup failed", "board_id", b.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		done = append(done, bk)
	}
	return done, errors.Join(errs...)
}

// ListBackups returns stored backups, newest first. An empty boardID lists
// backups of every board. Objects that do not look like backups are skipped.
func (s *Service) ListBackups(ctx context.Context, boardID string) ([]Backup, error) {
	prefix := KeyPrefix
	if boardID != "" {
		prefix += boardID + "/"
	}

	var out []Backup
	p := s3.NewListObjectsV2Paginator(s.store, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			id, at, ok := parseKey(key)
			if !ok {
				continue
			}
			out = append(out, Backup{Key: key, BoardID: id, Size: aws.ToInt64(obj.Size), CreatedAt: at})
		}
	}

	slices.SortFunc(out, func(a, b Backup) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out, nil
}

// Restore downloads the backup at key and imports it as a new board.
func (s *Service) Restore(ctx context.Context, key string) (string, error) {
	obj, err := s.store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("restore %s: download: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(io.LimitReader(obj.Body, archive.MaxEntrySize))
	if err != nil {
		return "", fmt.Errorf("restore %s: read: %w", key, err)
	}

	id, err := s.codec.ImportBytes(ctx, data)
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", key, err)
	}
	s.log.Info(ctx, "backup restored", "key", key, "board_id", id)
	return id, nil
}
