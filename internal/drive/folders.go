package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mwantia/godrive/pkg/db/models"
	"github.com/mwantia/godrive/pkg/db/store"
	"github.com/mwantia/godrive/pkg/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const maxNameLength = 255

// FolderService owns the structure of every owner's folder forest.
type FolderService struct {
	store  store.MetadataStore
	paging Paging
	log    log.LoggerService
}

type FolderFilter struct {
	// ParentID limits the result to children of a folder; RootFolder selects
	// root-level folders and an empty value disables the filter.
	ParentID string
	Name     string

	Page  int
	Limit int
}

type CreateFolderInput struct {
	Name     string
	ParentID string
}

// UpdateFolderInput renames and/or reparents a folder. Nil fields stay unchanged;
// a ParentID of "" or RootFolder moves the folder to the root.
type UpdateFolderInput struct {
	Name     *string
	ParentID *string
}

func NewFolderService(metadata store.MetadataStore, paging Paging, logger log.LoggerService) *FolderService {
	return &FolderService{
		store:  metadata,
		paging: paging,
		log:    logger.Named("folders"),
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", badRequest("name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", badRequest("name exceeds %d characters", maxNameLength)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return "", badRequest("name must not contain path separators")
	}
	return name, nil
}

func (s *FolderService) lookup(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	folder, err := s.store.GetFolder(ctx, ownerID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("folder '%s'", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return folder, nil
}

// Ensure verifies that folderID exists and belongs to ownerID; nil is the root and always valid.
func (s *FolderService) Ensure(ctx context.Context, ownerID string, folderID *string) error {
	if folderID == nil {
		return nil
	}
	_, err := s.lookup(ctx, ownerID, *folderID)
	return err
}

func (s *FolderService) Get(ctx context.Context, ownerID, id string) (*FolderView, error) {
	folder, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	view := toFolderView(folder)
	return &view, nil
}

func (s *FolderService) List(ctx context.Context, ownerID string, filter FolderFilter) (*Page[FolderView], error) {
	page, limit := s.paging.normalize(filter.Page, filter.Limit)

	query := store.FolderQuery{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(filter.Name),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
	if filter.ParentID != "" {
		query.ByParent = true
		query.ParentID = folderRef(filter.ParentID)
	}

	folders, total, err := s.store.ListFolders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return newPage(toFolderViews(folders), total, page, limit), nil
}

// Tree loads all folders of the owner at once and nests them by parent.
func (s *FolderService) Tree(ctx context.Context, ownerID string) ([]*FolderNode, error) {
	folders, err := s.store.ListOwnerFolders(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}

	children := make(map[string][]*models.Folder, len(folders))
	for i := range folders {
		parent := ""
		if folders[i].ParentID != nil {
			parent = *folders[i].ParentID
		}
		children[parent] = append(children[parent], &folders[i])
	}

	visited := make(map[string]bool, len(folders))
	var build func(parent string) []*FolderNode
	build = func(parent string) []*FolderNode {
		nodes := make([]*FolderNode, 0, len(children[parent]))
		for _, folder := range children[parent] {
			if visited[folder.ID] {
				continue
			}
			visited[folder.ID] = true

			nodes = append(nodes, &FolderNode{
				FolderView: toFolderView(folder),
				Children:   build(folder.ID),
			})
		}
		return nodes
	}

	return build(""), nil
}

// Contents returns the direct child folders and a page of direct files of a folder.
func (s *FolderService) Contents(ctx context.Context, ownerID, folder string, filter FileFilter) (*FolderContents, error) {
	contents := &FolderContents{}
	folderID := folderRef(folder)

	if folderID != nil {
		current, err := s.lookup(ctx, ownerID, *folderID)
		if err != nil {
			return nil, err
		}
		view := toFolderView(current)
		contents.Folder = &view
	}

	filter.FolderID = RootFolder
	if folderID != nil {
		filter.FolderID = *folderID
	}
	fileQuery, page, limit, err := buildFileQuery(ownerID, filter, s.paging)
	if err != nil {
		return nil, err
	}

	var (
		folders []models.Folder
		files   []models.File
		total   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		folders, _, err = s.store.ListFolders(gctx, store.FolderQuery{
			OwnerID:  ownerID,
			ByParent: true,
			ParentID: folderID,
		})
		if err != nil {
			return fmt.Errorf("failed to list child folders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		files, total, err = s.store.ListFiles(gctx, fileQuery)
		if err != nil {
			return fmt.Errorf("failed to list folder files: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contents.Folders = toFolderViews(folders)
	contents.Files = newPage(toFileViews(files), total, page, limit)
	return contents, nil
}

func (s *FolderService) ensureUniqueName(ctx context.Context, ownerID string, parentID *string, name, excludeID string) error {
	count, err := s.store.CountSiblingFolders(ctx, ownerID, parentID, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check sibling folders: %w", err)
	}
	if count > 0 {
		return badRequest("a folder named '%s' already exists here", name)
	}
	return nil
}

func (s *FolderService) Create(ctx context.Context, ownerID string, input CreateFolderInput) (*FolderView, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	parentID := folderRef(input.ParentID)
	if err := s.Ensure(ctx, ownerID, parentID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, ownerID, parentID, name, ""); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:     name,
		ParentID: parentID,
		OwnerID:  ownerID,
	}
	if err := s.store.CreateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.log.Debug("Created folder '%s' (%s) for owner '%s'", folder.Name, folder.ID, ownerID)

	view := toFolderView(folder)
	return &view, nil
}

func (s *FolderService) Update(ctx context.Context, ownerID, id string, input UpdateFolderInput) (*FolderView, error) {
	folder, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	name := folder.Name
	parentID := folder.ParentID
	changed := false

	if input.ParentID != nil {
		target := folderRef(*input.ParentID)
		if !sameFolder(target, folder.ParentID) {
			if target != nil {
				if *target == folder.ID {
					return nil, badRequest("a folder cannot be its own parent")
				}

				descendant, err := s.IsDescendant(ctx, ownerID, folder.ID, *target)
				if err != nil {
					return nil, err
				}
				if descendant {
					return nil, badRequest("cannot move a folder into one of its descendants")
				}

				if err := s.Ensure(ctx, ownerID, target); err != nil {
					return nil, err
				}
			}
			parentID = target
			changed = true
		}
	}

	if input.Name != nil {
		newName, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		if newName != folder.Name {
			name = newName
			changed = true
		}
	}

	if !changed {
		view := toFolderView(folder)
		return &view, nil
	}

	// Names must stay unique in the destination, also when only the parent changes
	if err := s.ensureUniqueName(ctx, ownerID, parentID, name, folder.ID); err != nil {
		return nil, err
	}

	folder.Name = name
	folder.ParentID = parentID
	if err := s.store.UpdateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}

	s.log.Debug("Updated folder '%s' (%s) for owner '%s'", folder.Name, folder.ID, ownerID)

	view := toFolderView(folder)
	return &view, nil
}

// Delete removes an empty folder. Non-empty folders fail with a *NonEmptyError.
func (s *FolderService) Delete(ctx context.Context, ownerID, id string) error {
	folder, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return err
	}

	folders, err := s.store.CountChildFolders(ctx, ownerID, folder.ID)
	if err != nil {
		return fmt.Errorf("failed to count child folders: %w", err)
	}
	files, err := s.store.CountFolderFiles(ctx, ownerID, folder.ID)
	if err != nil {
		return fmt.Errorf("failed to count folder files: %w", err)
	}
	if folders > 0 || files > 0 {
		return &NonEmptyError{FolderID: folder.ID, Folders: folders, Files: files}
	}

	if err := s.store.DeleteFolder(ctx, ownerID, folder.ID); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	s.log.Debug("Deleted folder '%s' (%s) for owner '%s'", folder.Name, folder.ID, ownerID)
	return nil
}

// IsDescendant reports whether candidateID lies below ancestorID. The owner's
// parent links are loaded once and walked in memory. A loop in existing data
// is reported as a descendant so that no move can extend it.
func (s *FolderService) IsDescendant(ctx context.Context, ownerID, ancestorID, candidateID string) (bool, error) {
	folders, err := s.store.ListOwnerFolders(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to load folders: %w", err)
	}

	parents := make(map[string]*string, len(folders))
	for _, folder := range folders {
		parents[folder.ID] = folder.ParentID
	}

	visited := map[string]bool{candidateID: true}
	current := candidateID
	for {
		parent, ok := parents[current]
		if !ok || parent == nil {
			return false, nil
		}
		if *parent == ancestorID {
			return true, nil
		}
		if visited[*parent] {
			s.log.Warn("Detected folder loop at '%s' for owner '%s'", *parent, ownerID)
			return true, nil
		}
		visited[*parent] = true
		current = *parent
	}
}
