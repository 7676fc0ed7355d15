package drive

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func TestCreateFolderSiblingUniqueness(t *testing.T) {
	env := setupTestEnv(t)

	reports := env.mkdir(t, "U", "Reports", "")
	if reports.ParentID != nil {
		t.Fatalf("root folder should have no parent, got %v", *reports.ParentID)
	}

	_, err := env.folders.Create(env.ctx, "U", CreateFolderInput{Name: "Reports"})
	expectKind(t, err, KindBadRequest)

	// another owner has an independent namespace
	if _, err := env.folders.Create(env.ctx, "U2", CreateFolderInput{Name: "Reports"}); err != nil {
		t.Fatalf("other owner should be able to create 'Reports': %v", err)
	}

	// same name below a different parent is fine
	if _, err := env.folders.Create(env.ctx, "U", CreateFolderInput{Name: "Reports", ParentID: reports.ID}); err != nil {
		t.Fatalf("nested 'Reports' should be allowed: %v", err)
	}
}

func TestCreateFolderValidatesParent(t *testing.T) {
	env := setupTestEnv(t)

	foreign := env.mkdir(t, "U2", "Private", "")

	_, err := env.folders.Create(env.ctx, "U", CreateFolderInput{Name: "Sub", ParentID: foreign.ID})
	expectKind(t, err, KindNotFound)

	_, err = env.folders.Create(env.ctx, "U", CreateFolderInput{Name: "Sub", ParentID: "does-not-exist"})
	expectKind(t, err, KindNotFound)
}

func TestCreateFolderRejectsInvalidNames(t *testing.T) {
	env := setupTestEnv(t)

	for _, name := range []string{"", "   ", "a/b"} {
		_, err := env.folders.Create(env.ctx, "U", CreateFolderInput{Name: name})
		expectKind(t, err, KindBadRequest)
	}
}

func TestUpdateFolderRejectsCycles(t *testing.T) {
	env := setupTestEnv(t)

	f1 := env.mkdir(t, "U", "F1", "")
	f2 := env.mkdir(t, "U", "F2", f1.ID)
	f3 := env.mkdir(t, "U", "F3", f2.ID)

	_, err := env.folders.Update(env.ctx, "U", f1.ID, UpdateFolderInput{ParentID: &f2.ID})
	expectKind(t, err, KindBadRequest)

	_, err = env.folders.Update(env.ctx, "U", f1.ID, UpdateFolderInput{ParentID: &f3.ID})
	expectKind(t, err, KindBadRequest)

	_, err = env.folders.Update(env.ctx, "U", f1.ID, UpdateFolderInput{ParentID: &f1.ID})
	expectKind(t, err, KindBadRequest)

	// nothing moved
	current, _ := env.folders.Get(env.ctx, "U", f1.ID)
	if current.ParentID != nil {
		t.Fatal("F1 must stay at root after rejected moves")
	}
}

func TestUpdateFolderReparent(t *testing.T) {
	env := setupTestEnv(t)

	f1 := env.mkdir(t, "U", "F1", "")
	f2 := env.mkdir(t, "U", "F2", f1.ID)
	other := env.mkdir(t, "U", "Other", "")

	moved, err := env.folders.Update(env.ctx, "U", f2.ID, UpdateFolderInput{ParentID: &other.ID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != other.ID {
		t.Fatalf("expected parent %s, got %v", other.ID, moved.ParentID)
	}

	moved, err = env.folders.Update(env.ctx, "U", f2.ID, UpdateFolderInput{ParentID: strPtr(RootFolder)})
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}
	if moved.ParentID != nil {
		t.Fatal("expected folder at root")
	}

	foreign := env.mkdir(t, "U2", "Foreign", "")
	_, err = env.folders.Update(env.ctx, "U", f2.ID, UpdateFolderInput{ParentID: &foreign.ID})
	expectKind(t, err, KindNotFound)
}

func TestUpdateFolderNameCollisionAtDestination(t *testing.T) {
	env := setupTestEnv(t)

	a := env.mkdir(t, "U", "A", "")
	b := env.mkdir(t, "U", "B", "")
	env.mkdir(t, "U", "Docs", b.ID)
	docs := env.mkdir(t, "U", "Docs", a.ID)
	notes := env.mkdir(t, "U", "Notes", a.ID)

	// rename into an existing sibling name
	_, err := env.folders.Update(env.ctx, "U", notes.ID, UpdateFolderInput{Name: strPtr("Docs")})
	expectKind(t, err, KindBadRequest)

	// moving next to a folder with the same name
	_, err = env.folders.Update(env.ctx, "U", docs.ID, UpdateFolderInput{ParentID: &b.ID})
	expectKind(t, err, KindBadRequest)

	// rename and move together checks the destination scope
	renamed, err := env.folders.Update(env.ctx, "U", docs.ID, UpdateFolderInput{Name: strPtr("Docs 2"), ParentID: &b.ID})
	if err != nil {
		t.Fatalf("rename+move: %v", err)
	}
	if renamed.Name != "Docs 2" || *renamed.ParentID != b.ID {
		t.Fatalf("unexpected result: %+v", renamed)
	}

	// renaming to its own name is a no-op
	if _, err := env.folders.Update(env.ctx, "U", notes.ID, UpdateFolderInput{Name: strPtr("Notes")}); err != nil {
		t.Fatalf("no-op rename: %v", err)
	}
}

func TestUpdateFolderOwnerScoped(t *testing.T) {
	env := setupTestEnv(t)

	folder := env.mkdir(t, "U", "Mine", "")
	_, err := env.folders.Update(env.ctx, "U2", folder.ID, UpdateFolderInput{Name: strPtr("Stolen")})
	expectKind(t, err, KindNotFound)
}

func TestDeleteFolderBlockedWhenNotEmpty(t *testing.T) {
	env := setupTestEnv(t)

	parent := env.mkdir(t, "U", "Parent", "")
	env.mkdir(t, "U", "Child", parent.ID)
	env.upload(t, "U", "a.txt", "text/plain", []byte("a"), parent.ID)
	env.upload(t, "U", "b.txt", "text/plain", []byte("b"), parent.ID)

	err := env.folders.Delete(env.ctx, "U", parent.ID)
	expectKind(t, err, KindBadRequest)

	var nonEmpty *NonEmptyError
	if !errors.As(err, &nonEmpty) {
		t.Fatalf("expected NonEmptyError, got %T", err)
	}
	if nonEmpty.Folders != 1 || nonEmpty.Files != 2 {
		t.Fatalf("expected 1 folder and 2 files, got %+v", nonEmpty)
	}

	if _, err := env.folders.Get(env.ctx, "U", parent.ID); err != nil {
		t.Fatalf("blocked delete must not remove the folder: %v", err)
	}
	page, _ := env.files.List(env.ctx, "U", FileFilter{FolderID: parent.ID})
	if page.Pagination.Total != 2 {
		t.Fatalf("blocked delete must not remove files, %d left", page.Pagination.Total)
	}
}

func TestDeleteEmptyFolder(t *testing.T) {
	env := setupTestEnv(t)

	folder := env.mkdir(t, "U", "Empty", "")

	expectKind(t, env.folders.Delete(env.ctx, "U2", folder.ID), KindNotFound)

	if err := env.folders.Delete(env.ctx, "U", folder.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := env.folders.Get(env.ctx, "U", folder.ID)
	expectKind(t, err, KindNotFound)
}

func TestFolderTree(t *testing.T) {
	env := setupTestEnv(t)

	a := env.mkdir(t, "U", "A", "")
	env.mkdir(t, "U", "B", "")
	a1 := env.mkdir(t, "U", "A1", a.ID)
	env.mkdir(t, "U", "A1x", a1.ID)
	env.mkdir(t, "U2", "Foreign", "")

	tree, err := env.folders.Tree(env.ctx, "U")
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 2 || tree[0].Name != "A" || tree[1].Name != "B" {
		t.Fatalf("unexpected roots: %+v", tree)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "A1" {
		t.Fatalf("unexpected children of A: %+v", tree[0].Children)
	}
	if len(tree[0].Children[0].Children) != 1 || tree[0].Children[0].Children[0].Name != "A1x" {
		t.Fatal("expected A1x below A1")
	}
	if len(tree[1].Children) != 0 {
		t.Fatal("B should have no children")
	}
}

func TestFolderList(t *testing.T) {
	env := setupTestEnv(t)

	parent := env.mkdir(t, "U", "Projects", "")
	env.mkdir(t, "U", "Alpha", parent.ID)
	env.mkdir(t, "U", "Beta", parent.ID)
	env.mkdir(t, "U", "alphabet", "")

	roots, err := env.folders.List(env.ctx, "U", FolderFilter{ParentID: RootFolder})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if roots.Pagination.Total != 2 {
		t.Fatalf("expected 2 root folders, got %d", roots.Pagination.Total)
	}

	children, _ := env.folders.List(env.ctx, "U", FolderFilter{ParentID: parent.ID, Limit: 1})
	if children.Pagination.Total != 2 || children.Pagination.TotalPages != 2 || len(children.Items) != 1 {
		t.Fatalf("unexpected pagination: %+v", children.Pagination)
	}

	matches, _ := env.folders.List(env.ctx, "U", FolderFilter{Name: "ALPHA"})
	if matches.Pagination.Total != 2 {
		t.Fatalf("expected case-insensitive match on 2 folders, got %d", matches.Pagination.Total)
	}
}

func TestFolderContents(t *testing.T) {
	env := setupTestEnv(t)

	folder := env.mkdir(t, "U", "Docs", "")
	env.mkdir(t, "U", "Sub", folder.ID)
	env.upload(t, "U", "inside.txt", "text/plain", []byte("in"), folder.ID)
	env.upload(t, "U", "outside.txt", "text/plain", []byte("out"), "")

	contents, err := env.folders.Contents(env.ctx, "U", folder.ID, FileFilter{})
	if err != nil {
		t.Fatalf("Contents: %v", err)
	}
	if contents.Folder == nil || contents.Folder.ID != folder.ID {
		t.Fatal("contents should describe the folder itself")
	}
	if len(contents.Folders) != 1 || contents.Folders[0].Name != "Sub" {
		t.Fatalf("unexpected child folders: %+v", contents.Folders)
	}
	if len(contents.Files.Items) != 1 || contents.Files.Items[0].OriginalName != "inside.txt" {
		t.Fatalf("unexpected files: %+v", contents.Files.Items)
	}

	root, err := env.folders.Contents(env.ctx, "U", RootFolder, FileFilter{})
	if err != nil {
		t.Fatalf("root Contents: %v", err)
	}
	if root.Folder != nil || len(root.Folders) != 1 || len(root.Files.Items) != 1 {
		t.Fatalf("unexpected root contents: %+v", root)
	}

	_, err = env.folders.Contents(env.ctx, "U2", folder.ID, FileFilter{})
	expectKind(t, err, KindNotFound)
}

func TestIsDescendant(t *testing.T) {
	env := setupTestEnv(t)

	a := env.mkdir(t, "U", "A", "")
	b := env.mkdir(t, "U", "B", a.ID)
	c := env.mkdir(t, "U", "C", b.ID)
	d := env.mkdir(t, "U", "D", "")

	cases := []struct {
		ancestor, candidate string
		want                bool
	}{
		{a.ID, b.ID, true},
		{a.ID, c.ID, true},
		{b.ID, c.ID, true},
		{c.ID, a.ID, false},
		{a.ID, d.ID, false},
		{a.ID, "missing", false},
	}
	for _, tc := range cases {
		got, err := env.folders.IsDescendant(env.ctx, "U", tc.ancestor, tc.candidate)
		if err != nil {
			t.Fatalf("IsDescendant: %v", err)
		}
		if got != tc.want {
			t.Errorf("IsDescendant(%s, %s) = %v, want %v", tc.ancestor, tc.candidate, got, tc.want)
		}
	}
}

func TestIsDescendantStopsOnCorruptLoop(t *testing.T) {
	env := setupTestEnv(t)

	a := env.mkdir(t, "U", "A", "")
	b := env.mkdir(t, "U", "B", a.ID)
	target := env.mkdir(t, "U", "T", "")

	// corrupt the forest directly: A <-> B
	row, _ := env.sqlite.GetFolder(env.ctx, "U", a.ID)
	row.ParentID = &b.ID
	if err := env.sqlite.UpdateFolder(env.ctx, row); err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}

	got, err := env.folders.IsDescendant(env.ctx, "U", target.ID, a.ID)
	if err != nil {
		t.Fatalf("IsDescendant: %v", err)
	}
	if !got {
		t.Fatal("a loop must be reported so the move is rejected")
	}
}

// Random reparent attempts must never produce a cycle or duplicate sibling names.
func TestRandomReparentKeepsForestValid(t *testing.T) {
	env := setupTestEnv(t)
	rng := rand.New(rand.NewSource(42))

	ids := []string{}
	for i := 0; i < 12; i++ {
		parent := ""
		if len(ids) > 0 && rng.Intn(3) > 0 {
			parent = ids[rng.Intn(len(ids))]
		}
		folder, err := env.folders.Create(env.ctx, "U", CreateFolderInput{Name: fmt.Sprintf("F%d", i%4), ParentID: parent})
		if err != nil {
			expectKind(t, err, KindBadRequest)
			continue
		}
		ids = append(ids, folder.ID)
	}

	for i := 0; i < 200; i++ {
		id := ids[rng.Intn(len(ids))]
		target := RootFolder
		if rng.Intn(5) > 0 {
			target = ids[rng.Intn(len(ids))]
		}
		_, err := env.folders.Update(env.ctx, "U", id, UpdateFolderInput{ParentID: &target})
		if err != nil && KindOf(err) != KindBadRequest {
			t.Fatalf("unexpected error kind: %v", err)
		}
	}

	folders, err := env.sqlite.ListOwnerFolders(env.ctx, "U")
	if err != nil {
		t.Fatalf("ListOwnerFolders: %v", err)
	}

	parents := map[string]*string{}
	siblings := map[string]bool{}
	for _, f := range folders {
		parents[f.ID] = f.ParentID
		key := "<root>/" + f.Name
		if f.ParentID != nil {
			key = *f.ParentID + "/" + f.Name
		}
		if siblings[key] {
			t.Fatalf("duplicate sibling name %q", key)
		}
		siblings[key] = true
	}

	for _, f := range folders {
		seen := map[string]bool{f.ID: true}
		current := f.ParentID
		for current != nil {
			if seen[*current] {
				t.Fatalf("cycle detected starting at %s", f.ID)
			}
			seen[*current] = true
			current = parents[*current]
		}
	}
}
