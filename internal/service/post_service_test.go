package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/models"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/storage"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Tag{}, &models.Post{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newTestPostService(t *testing.T, db *gorm.DB, mediaDir string) *PostService {
	t.Helper()
	if mediaDir == "" {
		mediaDir = t.TempDir()
	}
	return NewPostService(
		db,
		repository.NewPostRepository(db),
		repository.NewTagRepository(db),
		storage.NewLocalMediaStore(mediaDir),
		nil,
	)
}

func mustCreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: slug}
	if err := repository.NewTagRepository(db).Create(tag); err != nil {
		t.Fatalf("create tag %s failed: %v", slug, err)
	}
	return tag
}

func tagPostCount(t *testing.T, db *gorm.DB, tagID uint) int64 {
	t.Helper()
	tag, err := repository.NewTagRepository(db).GetByID(tagID)
	if err != nil {
		t.Fatalf("get tag failed: %v", err)
	}
	if tag == nil {
		t.Fatalf("tag %d not found", tagID)
	}
	return tag.PostCount
}

func TestCreatePostSlugConflictSpansTrash(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	post, err := svc.Create(CreatePostInput{Title: "Hello", Slug: "hello", Status: constants.PostStatusPublished})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if post.PublishedAt == nil {
		t.Fatalf("published post should get published_at")
	}

	if err := svc.SoftDelete(post.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	// 回收站中的同名 slug 仍占用
	if _, err := svc.Create(CreatePostInput{Title: "Hello 2", Slug: "hello"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("want ErrSlugExists got %v", err)
	}
}

func TestCreatePostValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{Title: "x", Slug: "x", Status: "archived"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("want ErrInvalidStatus got %v", err)
	}
	if _, err := svc.Create(CreatePostInput{Title: "x", Slug: "x", Visibility: "hidden"}); !errors.Is(err, ErrInvalidVisibility) {
		t.Fatalf("want ErrInvalidVisibility got %v", err)
	}

	missing := uint(999)
	if _, err := svc.Create(CreatePostInput{Title: "x", Slug: "x", CategoryID: &missing}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound got %v", err)
	}

	post, err := svc.Create(CreatePostInput{Title: "Defaults", Slug: "defaults"})
	if err != nil {
		t.Fatalf("create with defaults failed: %v", err)
	}
	if post.Status != constants.PostStatusDraft {
		t.Fatalf("default status want draft got %s", post.Status)
	}
	if post.Visibility != constants.PostVisibilityPublic {
		t.Fatalf("default visibility want public got %s", post.Visibility)
	}
	if post.ContentType != constants.PostContentTypeMarkdown {
		t.Fatalf("default content type want markdown got %s", post.ContentType)
	}
	if post.PublishedAt != nil {
		t.Fatalf("draft should not get published_at")
	}
}

func TestCreatePostDropsUnknownTags(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")
	tag := mustCreateTag(t, db, "Go", "go")

	post, err := svc.Create(CreatePostInput{
		Title:  "Tagged",
		Slug:   "tagged",
		Status: constants.PostStatusPublished,
		TagIDs: []uint{tag.ID, 9999},
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if len(post.Tags) != 1 || post.Tags[0].ID != tag.ID {
		t.Fatalf("unknown tag should be dropped, got %+v", post.Tags)
	}
	if got := tagPostCount(t, db, tag.ID); got != 1 {
		t.Fatalf("tag post count want 1 got %d", got)
	}
}

func TestUpdatePostPartialFields(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	post, err := svc.Create(CreatePostInput{
		Title:   "Original",
		Slug:    "original",
		Content: "body",
		Excerpt: "summary",
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	newTitle := "Renamed"
	updated, err := svc.Update(post.ID, UpdatePostInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("update post failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("title want Renamed got %s", updated.Title)
	}
	if updated.Slug != "original" || updated.Content != "body" || updated.Excerpt != "summary" {
		t.Fatalf("untouched fields should keep values, got %+v", updated)
	}
}

func TestUpdatePostSlugConflict(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{Title: "A", Slug: "a"}); err != nil {
		t.Fatalf("create a failed: %v", err)
	}
	b, err := svc.Create(CreatePostInput{Title: "B", Slug: "b"})
	if err != nil {
		t.Fatalf("create b failed: %v", err)
	}

	conflict := "a"
	if _, err := svc.Update(b.ID, UpdatePostInput{Slug: &conflict}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("want ErrSlugExists got %v", err)
	}

	// 改回自身 slug 不算冲突
	same := "b"
	if _, err := svc.Update(b.ID, UpdatePostInput{Slug: &same}); err != nil {
		t.Fatalf("update with own slug failed: %v", err)
	}
}

func TestUpdatePostTagReplacementRefreshesCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")
	golang := mustCreateTag(t, db, "Go", "go")
	docker := mustCreateTag(t, db, "Docker", "docker")

	post, err := svc.Create(CreatePostInput{
		Title:  "Tags",
		Slug:   "tags",
		Status: constants.PostStatusPublished,
		TagIDs: []uint{golang.ID},
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	// 换标签后，被移除的标签计数也要回落
	if _, err := svc.Update(post.ID, UpdatePostInput{TagIDs: []uint{docker.ID}}); err != nil {
		t.Fatalf("update tags failed: %v", err)
	}
	if got := tagPostCount(t, db, golang.ID); got != 0 {
		t.Fatalf("removed tag count want 0 got %d", got)
	}
	if got := tagPostCount(t, db, docker.ID); got != 1 {
		t.Fatalf("added tag count want 1 got %d", got)
	}

	// 空集合表示不变更
	if _, err := svc.Update(post.ID, UpdatePostInput{TagIDs: []uint{}}); err != nil {
		t.Fatalf("update without tags failed: %v", err)
	}
	if got := tagPostCount(t, db, docker.ID); got != 1 {
		t.Fatalf("tag count should stay 1 got %d", got)
	}
}

func TestTagCountFollowsPostLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")
	tag := mustCreateTag(t, db, "Life", "life")

	post, err := svc.Create(CreatePostInput{
		Title:  "Lifecycle",
		Slug:   "lifecycle",
		Status: constants.PostStatusPublished,
		TagIDs: []uint{tag.ID},
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if got := tagPostCount(t, db, tag.ID); got != 1 {
		t.Fatalf("after create want 1 got %d", got)
	}

	if err := svc.SoftDelete(post.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if got := tagPostCount(t, db, tag.ID); got != 0 {
		t.Fatalf("after trash want 0 got %d", got)
	}

	if err := svc.Restore(post.ID); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := tagPostCount(t, db, tag.ID); got != 1 {
		t.Fatalf("after restore want 1 got %d", got)
	}

	if err := svc.Delete(post.ID); err != nil {
		t.Fatalf("hard delete failed: %v", err)
	}
	if got := tagPostCount(t, db, tag.ID); got != 0 {
		t.Fatalf("after hard delete want 0 got %d", got)
	}
}

func TestDeletePostCleansLocalMedia(t *testing.T) {
	db := newTestDB(t)
	mediaDir := t.TempDir()
	svc := newTestPostService(t, db, mediaDir)

	imageDir := filepath.Join(mediaDir, "2026", "01")
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	bodyImage := filepath.Join(imageDir, "body.png")
	coverImage := filepath.Join(imageDir, "cover.png")
	for _, file := range []string{bodyImage, coverImage} {
		if err := os.WriteFile(file, []byte("png"), 0644); err != nil {
			t.Fatalf("write %s failed: %v", file, err)
		}
	}

	// 正文引用两次同一图片，外站图片不应影响删除
	content := "![a](/uploads/2026/01/body.png)\n" +
		"![b](https://cdn.example.com/external.png)\n" +
		"![c](/uploads/2026/01/body.png)\n"
	post, err := svc.Create(CreatePostInput{
		Title:         "Media",
		Slug:          "media",
		Content:       content,
		CoverImageURL: "/uploads/2026/01/cover.png",
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if err := svc.Delete(post.ID); err != nil {
		t.Fatalf("delete post failed: %v", err)
	}

	for _, file := range []string{bodyImage, coverImage} {
		if _, err := os.Stat(file); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err=%v", file, err)
		}
	}
	if _, err := svc.GetByID(post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("post should be gone, got %v", err)
	}
}

func TestDeleteTrashedPost(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	post, err := svc.Create(CreatePostInput{Title: "Trash", Slug: "trash"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	// 存活文章不能走回收站删除
	if err := svc.DeleteTrashed(post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for live post got %v", err)
	}

	if err := svc.SoftDelete(post.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	// 回收站文章不能走存活删除
	if err := svc.Delete(post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for trashed post got %v", err)
	}
	if err := svc.DeleteTrashed(post.ID); err != nil {
		t.Fatalf("delete trashed failed: %v", err)
	}

	count, err := repository.NewPostRepository(db).CountBySlug("trash", nil)
	if err != nil {
		t.Fatalf("count slug failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("slug should be released after purge, got %d", count)
	}
}

func TestGetPublicBySlugHidesDrafts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{Title: "Draft", Slug: "draft"}); err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := svc.GetPublicBySlug("draft"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("draft should be invisible, got %v", err)
	}

	if _, err := svc.Create(CreatePostInput{Title: "Live", Slug: "live", Status: constants.PostStatusPublished}); err != nil {
		t.Fatalf("create published failed: %v", err)
	}
	post, err := svc.GetPublicBySlug("live")
	if err != nil {
		t.Fatalf("published should be visible, got %v", err)
	}
	if post.Slug != "live" {
		t.Fatalf("slug want live got %s", post.Slug)
	}
}

func TestPrivatePostsInvisibleOnPublicSurface(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{
		Title: "Hidden", Slug: "hidden", Content: "secret body",
		Status: constants.PostStatusPublished, Visibility: constants.PostVisibilityPrivate,
	}); err != nil {
		t.Fatalf("create private post failed: %v", err)
	}

	if _, err := svc.GetPublicBySlug("hidden"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("private post should be invisible, got %v", err)
	}
	// 密码校验入口也不能成为私有文章的后门
	if _, err := svc.VerifyPassword("hidden", "anything"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("verify-password should not expose private post, got %v", err)
	}
}

func TestListPublicFiltersStatusAndVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{Title: "Public", Slug: "public", Status: constants.PostStatusPublished}); err != nil {
		t.Fatalf("create public failed: %v", err)
	}
	if _, err := svc.Create(CreatePostInput{
		Title: "Secret", Slug: "secret",
		Status: constants.PostStatusPublished, Visibility: constants.PostVisibilityPassword, Password: "pw",
	}); err != nil {
		t.Fatalf("create password post failed: %v", err)
	}
	if _, err := svc.Create(CreatePostInput{
		Title: "Private", Slug: "private",
		Status: constants.PostStatusPublished, Visibility: constants.PostVisibilityPrivate,
	}); err != nil {
		t.Fatalf("create private failed: %v", err)
	}
	if _, err := svc.Create(CreatePostInput{Title: "Draft", Slug: "draft2"}); err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	posts, total, err := svc.ListPublic(repository.PostListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("public list want 2 got total=%d len=%d", total, len(posts))
	}
	for _, p := range posts {
		if p.Slug == "private" || p.Slug == "draft2" {
			t.Fatalf("private/draft leaked into public list: %s", p.Slug)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{
		Title: "Locked", Slug: "locked",
		Status: constants.PostStatusPublished, Visibility: constants.PostVisibilityPassword, Password: "open-sesame",
	}); err != nil {
		t.Fatalf("create password post failed: %v", err)
	}

	if _, err := svc.VerifyPassword("locked", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword got %v", err)
	}
	post, err := svc.VerifyPassword("locked", "open-sesame")
	if err != nil {
		t.Fatalf("verify with correct password failed: %v", err)
	}
	if post.Slug != "locked" {
		t.Fatalf("slug want locked got %s", post.Slug)
	}

	// 非加密文章任何密码都放行
	if _, err := svc.Create(CreatePostInput{Title: "Open", Slug: "open", Status: constants.PostStatusPublished}); err != nil {
		t.Fatalf("create open post failed: %v", err)
	}
	if _, err := svc.VerifyPassword("open", ""); err != nil {
		t.Fatalf("open post should pass, got %v", err)
	}
}

func TestPostStats(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	if _, err := svc.Create(CreatePostInput{Title: "P1", Slug: "p1", Status: constants.PostStatusPublished}); err != nil {
		t.Fatalf("create p1 failed: %v", err)
	}
	if _, err := svc.Create(CreatePostInput{Title: "P2", Slug: "p2"}); err != nil {
		t.Fatalf("create p2 failed: %v", err)
	}
	trashed, err := svc.Create(CreatePostInput{Title: "P3", Slug: "p3", Status: constants.PostStatusPublished})
	if err != nil {
		t.Fatalf("create p3 failed: %v", err)
	}
	if err := svc.SoftDelete(trashed.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 2 || stats.Published != 1 || stats.Draft != 1 || stats.Trashed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestIncrementCounters(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(t, db, "")

	post, err := svc.Create(CreatePostInput{Title: "Counter", Slug: "counter", Status: constants.PostStatusPublished})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if err := svc.IncrementViewCount(post.ID); err != nil {
		t.Fatalf("increment view failed: %v", err)
	}
	if err := svc.IncrementViewCount(post.ID); err != nil {
		t.Fatalf("increment view failed: %v", err)
	}
	if err := svc.IncrementLikeCount(post.ID); err != nil {
		t.Fatalf("increment like failed: %v", err)
	}
	if err := svc.IncrementViewCount(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing post want ErrNotFound got %v", err)
	}

	got, err := svc.GetByID(post.ID)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if got.ViewCount != 2 || got.LikeCount != 1 {
		t.Fatalf("counters want view=2 like=1 got view=%d like=%d", got.ViewCount, got.LikeCount)
	}
}
