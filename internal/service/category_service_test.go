package service

import (
	"errors"
	"testing"

	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/repository"

	"gorm.io/gorm"
)

func newTestCategoryService(t *testing.T, db *gorm.DB) *CategoryService {
	t.Helper()
	return NewCategoryService(db, repository.NewCategoryRepository(db), repository.NewPostRepository(db))
}

func TestCreateCategoryLevels(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCategoryService(t, db)

	root, err := svc.Create(CreateCategoryInput{Name: "Tech", Slug: "tech"})
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	if root.Level != constants.CategoryRootLevel {
		t.Fatalf("root level want %d got %d", constants.CategoryRootLevel, root.Level)
	}

	child, err := svc.Create(CreateCategoryInput{Name: "Go", Slug: "go", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}
	if child.Level != root.Level+1 {
		t.Fatalf("child level want %d got %d", root.Level+1, child.Level)
	}

	missing := uint(999)
	if _, err := svc.Create(CreateCategoryInput{Name: "Orphan", Slug: "orphan", ParentID: &missing}); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("want ErrParentNotFound got %v", err)
	}
	if _, err := svc.Create(CreateCategoryInput{Name: "Tech", Slug: "tech-2"}); !errors.Is(err, ErrNameExists) {
		t.Fatalf("want ErrNameExists got %v", err)
	}
	if _, err := svc.Create(CreateCategoryInput{Name: "Tech 2", Slug: "tech"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("want ErrSlugExists got %v", err)
	}
}

func TestDeleteCategoryBlockedByOwnLivePosts(t *testing.T) {
	db := newTestDB(t)
	categories := newTestCategoryService(t, db)
	posts := newTestPostService(t, db, "")

	tech, err := categories.Create(CreateCategoryInput{Name: "Tech", Slug: "tech"})
	if err != nil {
		t.Fatalf("create tech failed: %v", err)
	}
	golang, err := categories.Create(CreateCategoryInput{Name: "Go", Slug: "go", ParentID: &tech.ID})
	if err != nil {
		t.Fatalf("create go failed: %v", err)
	}

	if _, err := posts.Create(CreatePostInput{
		Title: "Tech Intro", Slug: "tech-intro",
		Status: constants.PostStatusPublished, CategoryID: &tech.ID,
	}); err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	err = categories.Delete(tech.ID)
	if !errors.Is(err, ErrCategoryHasPosts) {
		t.Fatalf("want ErrCategoryHasPosts got %v", err)
	}
	var inUse *CategoryInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("want CategoryInUseError got %T", err)
	}
	if inUse.PostCount != 1 {
		t.Fatalf("post count want 1 got %d", inUse.PostCount)
	}

	// 分类树保持原样
	if _, err := categories.GetByID(tech.ID); err != nil {
		t.Fatalf("tech should survive, got %v", err)
	}
	if _, err := categories.GetByID(golang.ID); err != nil {
		t.Fatalf("go should survive, got %v", err)
	}
}

func TestDeleteCategoryIgnoresDescendantLivePosts(t *testing.T) {
	db := newTestDB(t)
	categories := newTestCategoryService(t, db)
	posts := newTestPostService(t, db, "")

	tech, err := categories.Create(CreateCategoryInput{Name: "Tech", Slug: "tech"})
	if err != nil {
		t.Fatalf("create tech failed: %v", err)
	}
	golang, err := categories.Create(CreateCategoryInput{Name: "Go", Slug: "go", ParentID: &tech.ID})
	if err != nil {
		t.Fatalf("create go failed: %v", err)
	}

	// 只统计目标分类自身的存活文章，子分类下的文章不挡删除
	post, err := posts.Create(CreatePostInput{
		Title: "Go Intro", Slug: "go-intro",
		Status: constants.PostStatusPublished, CategoryID: &golang.ID,
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if err := categories.Delete(tech.ID); err != nil {
		t.Fatalf("delete category tree failed: %v", err)
	}
	for _, id := range []uint{tech.ID, golang.ID} {
		if _, err := categories.GetByID(id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("category %d should be gone, got %v", id, err)
		}
	}

	// 子分类下的文章保持原样，分类引用悬空
	survivor, err := posts.GetByID(post.ID)
	if err != nil {
		t.Fatalf("descendant post should survive, got %v", err)
	}
	if survivor.CategoryID == nil || *survivor.CategoryID != golang.ID {
		t.Fatalf("survivor should keep its category reference, got %v", survivor.CategoryID)
	}
}

func TestDeleteCategoryRemovesSubtreeAndOwnTrashedPosts(t *testing.T) {
	db := newTestDB(t)
	categories := newTestCategoryService(t, db)
	posts := newTestPostService(t, db, "")
	tag := mustCreateTag(t, db, "Gin", "gin")

	tech, err := categories.Create(CreateCategoryInput{Name: "Tech", Slug: "tech"})
	if err != nil {
		t.Fatalf("create tech failed: %v", err)
	}
	golang, err := categories.Create(CreateCategoryInput{Name: "Go", Slug: "go", ParentID: &tech.ID})
	if err != nil {
		t.Fatalf("create go failed: %v", err)
	}
	gin, err := categories.Create(CreateCategoryInput{Name: "Gin", Slug: "gin", ParentID: &golang.ID})
	if err != nil {
		t.Fatalf("create gin failed: %v", err)
	}

	own, err := posts.Create(CreatePostInput{
		Title: "Tech Post", Slug: "tech-post",
		Status: constants.PostStatusPublished, CategoryID: &tech.ID, TagIDs: []uint{tag.ID},
	})
	if err != nil {
		t.Fatalf("create own post failed: %v", err)
	}
	deep, err := posts.Create(CreatePostInput{
		Title: "Gin Post", Slug: "gin-post",
		Status: constants.PostStatusPublished, CategoryID: &gin.ID,
	})
	if err != nil {
		t.Fatalf("create deep post failed: %v", err)
	}
	for _, id := range []uint{own.ID, deep.ID} {
		if err := posts.SoftDelete(id); err != nil {
			t.Fatalf("soft delete %d failed: %v", id, err)
		}
	}

	if err := categories.Delete(tech.ID); err != nil {
		t.Fatalf("delete category tree failed: %v", err)
	}

	for _, id := range []uint{tech.ID, golang.ID, gin.ID} {
		if _, err := categories.GetByID(id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("category %d should be gone, got %v", id, err)
		}
	}

	repo := repository.NewPostRepository(db)

	// 目标分类自己的回收站文章被物理删除，slug 释放
	count, err := repo.CountBySlug("tech-post", nil)
	if err != nil {
		t.Fatalf("count own slug failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("own trashed post should be purged, got %d", count)
	}
	if got := tagPostCount(t, db, tag.ID); got != 0 {
		t.Fatalf("tag count want 0 got %d", got)
	}

	// 子孙分类的回收站文章不在连带范围内
	count, err = repo.CountBySlug("gin-post", nil)
	if err != nil {
		t.Fatalf("count deep slug failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("descendant trashed post should survive, got %d", count)
	}
}

func TestUpdateCategoryReparentKeepsDescendantLevels(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCategoryService(t, db)

	a, err := svc.Create(CreateCategoryInput{Name: "A", Slug: "a"})
	if err != nil {
		t.Fatalf("create a failed: %v", err)
	}
	b, err := svc.Create(CreateCategoryInput{Name: "B", Slug: "b", ParentID: &a.ID})
	if err != nil {
		t.Fatalf("create b failed: %v", err)
	}
	c, err := svc.Create(CreateCategoryInput{Name: "C", Slug: "c", ParentID: &b.ID})
	if err != nil {
		t.Fatalf("create c failed: %v", err)
	}

	x, err := svc.Create(CreateCategoryInput{Name: "X", Slug: "x"})
	if err != nil {
		t.Fatalf("create x failed: %v", err)
	}
	y, err := svc.Create(CreateCategoryInput{Name: "Y", Slug: "y", ParentID: &x.ID})
	if err != nil {
		t.Fatalf("create y failed: %v", err)
	}

	// 换父只重算自身层级，子孙不跟着变
	updated, err := svc.Update(b.ID, UpdateCategoryInput{ParentID: &y.ID})
	if err != nil {
		t.Fatalf("reparent b failed: %v", err)
	}
	if updated.Level != y.Level+1 {
		t.Fatalf("b level want %d got %d", y.Level+1, updated.Level)
	}
	gotC, err := svc.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get c failed: %v", err)
	}
	if gotC.Level != c.Level {
		t.Fatalf("c level should stay %d got %d", c.Level, gotC.Level)
	}

	missing := uint(999)
	if _, err := svc.Update(b.ID, UpdateCategoryInput{ParentID: &missing}); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("want ErrParentNotFound got %v", err)
	}
}

func TestCategoryChildrenAndExists(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCategoryService(t, db)

	root, err := svc.Create(CreateCategoryInput{Name: "Root", Slug: "root"})
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	if _, err := svc.Create(CreateCategoryInput{Name: "Child 1", Slug: "child-1", ParentID: &root.ID, SortOrder: 2}); err != nil {
		t.Fatalf("create child 1 failed: %v", err)
	}
	if _, err := svc.Create(CreateCategoryInput{Name: "Child 2", Slug: "child-2", ParentID: &root.ID, SortOrder: 1}); err != nil {
		t.Fatalf("create child 2 failed: %v", err)
	}

	children, err := svc.GetChildren(root.ID)
	if err != nil {
		t.Fatalf("get children failed: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("children len want 2 got %d", len(children))
	}

	exists, err := svc.NameExists("Root", nil)
	if err != nil || !exists {
		t.Fatalf("name Root should exist, got %v %v", exists, err)
	}
	exists, err = svc.SlugExists("root", &root.ID)
	if err != nil || exists {
		t.Fatalf("slug root excluding self should not exist, got %v %v", exists, err)
	}
}
