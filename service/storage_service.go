package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"offert-mockup-me/models"
)

// Bucket names understood by the storage layer. Each maps to a Drive
// folder ID supplied at construction.
const (
	BucketLogos   = "logos"
	BucketMockups = "mockups"
	BucketOffers  = "offers"
)

// StorageService is the Google Drive-backed blob store. Buckets are Drive
// folders; files are keyed by name within their folder. Implements
// StorageServiceInterface.
type StorageService struct {
	client  *drive.Service
	folders map[string]string // bucket name -> Drive folder ID
}

// NewStorageService creates a new StorageService instance.
// credentialsPath should be the path to the Service Account JSON file;
// folders maps bucket names to Drive folder IDs.
func NewStorageService(credentialsPath string, folders map[string]string) (*StorageService, error) {
	ctx := context.Background()

	// option.WithCredentialsFile handles Service Account authentication
	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &StorageService{
		client:  driveService,
		folders: folders,
	}, nil
}

// Ensure StorageService implements StorageServiceInterface
var _ StorageServiceInterface = (*StorageService)(nil)

// Upload stores binaryData under fileName inside the bucket's folder and
// returns the storage path (the Drive file ID). With upsert=true an
// existing file of the same name is updated in place (last-writer-wins);
// otherwise a new file is always created. Any failure surfaces as
// PersistError.
func (s *StorageService) Upload(ctx context.Context, bucket string, fileName string, binaryData []byte, contentType string, upsert bool) (string, error) {
	folderID, exists := s.folders[bucket]
	if !exists {
		return "", &models.PersistError{Key: fileName, Err: fmt.Errorf("unknown bucket %q", bucket)}
	}

	if upsert {
		existingID, err := s.findByName(ctx, folderID, fileName)
		if err != nil {
			return "", &models.PersistError{Key: fileName, Err: err}
		}
		if existingID != "" {
			updated, err := s.client.Files.Update(existingID, &drive.File{}).
				Media(bytes.NewReader(binaryData), googleapi.ContentType(contentType)).
				Context(ctx).
				Do()
			if err != nil {
				return "", &models.PersistError{Key: fileName, Err: fmt.Errorf("failed to update file: %w", err)}
			}
			log.Printf("✓ Storage: Updated %s in bucket %s (id=%s)", fileName, bucket, updated.Id)
			return updated.Id, nil
		}
	}

	created, err := s.client.Files.Create(&drive.File{
		Name:    fileName,
		Parents: []string{folderID},
	}).
		Media(bytes.NewReader(binaryData), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", &models.PersistError{Key: fileName, Err: fmt.Errorf("failed to create file: %w", err)}
	}

	log.Printf("✓ Storage: Created %s in bucket %s (id=%s)", fileName, bucket, created.Id)
	return created.Id, nil
}

// PublicURL resolves a storage path to a publicly retrievable URL
func (s *StorageService) PublicURL(storagePath string) string {
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", storagePath)
}

// findByName looks up a file ID by exact name within a folder.
// Returns "" when no file matches.
func (s *StorageService) findByName(ctx context.Context, folderID string, fileName string) (string, error) {
	escaped := strings.ReplaceAll(fileName, "'", `\'`)
	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed=false", folderID, escaped)

	r, err := s.client.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}

	if len(r.Files) == 0 {
		return "", nil
	}
	return r.Files[0].Id, nil
}
