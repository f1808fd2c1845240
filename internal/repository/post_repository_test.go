package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
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

func seedPost(t *testing.T, repo PostRepository, post models.Post) *models.Post {
	t.Helper()
	if post.Status == "" {
		post.Status = constants.PostStatusPublished
	}
	if post.Visibility == "" {
		post.Visibility = constants.PostVisibilityPublic
	}
	if err := repo.Create(&post); err != nil {
		t.Fatalf("create post %s failed: %v", post.Slug, err)
	}
	return &post
}

func TestPostListKeywordSearchCaseInsensitive(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewPostRepository(db)

	seedPost(t, repo, models.Post{Title: "Golang Tips", Slug: "golang-tips", Content: "concurrency patterns"})
	seedPost(t, repo, models.Post{Title: "Cooking", Slug: "cooking", Content: "pasta recipe"})

	rows, total, err := repo.List(PostListFilter{Page: 1, PageSize: 10, Search: "GOLANG"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "golang-tips" {
		t.Fatalf("title search want golang-tips got total=%d rows=%v", total, rows)
	}

	// 命中正文也算
	rows, total, err = repo.List(PostListFilter{Page: 1, PageSize: 10, Search: "Pasta"})
	if err != nil {
		t.Fatalf("content search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "cooking" {
		t.Fatalf("content search want cooking got total=%d rows=%v", total, rows)
	}
}

func TestPostListPagination(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewPostRepository(db)

	for i := 1; i <= 5; i++ {
		seedPost(t, repo, models.Post{Title: fmt.Sprintf("Post %d", i), Slug: fmt.Sprintf("post-%d", i)})
	}

	rows, total, err := repo.List(PostListFilter{Page: 2, PageSize: 2, OrderBy: "posts.id ASC"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total want 5 got %d", total)
	}
	if len(rows) != 2 || rows[0].Slug != "post-3" || rows[1].Slug != "post-4" {
		t.Fatalf("page 2 want post-3,post-4 got %v", rows)
	}
}

func TestPostTrashQueries(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewPostRepository(db)

	category := models.Category{Name: "Tech", Slug: "tech", Level: 1}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	live := seedPost(t, repo, models.Post{Title: "Live", Slug: "live", CategoryID: &category.ID})
	trashed := seedPost(t, repo, models.Post{Title: "Trashed", Slug: "trashed", CategoryID: &category.ID})
	if err := repo.SoftDelete(trashed.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	if got, err := repo.GetByID(trashed.ID); err != nil || got != nil {
		t.Fatalf("trashed post should be hidden from default scope, got %v %v", got, err)
	}
	if got, err := repo.GetTrashedByID(trashed.ID); err != nil || got == nil {
		t.Fatalf("trashed post should be found in trash, got %v %v", got, err)
	}
	if got, err := repo.GetTrashedByID(live.ID); err != nil || got != nil {
		t.Fatalf("live post should not be in trash, got %v %v", got, err)
	}

	inTrash, err := repo.ListTrashedByCategoryIDs([]uint{category.ID})
	if err != nil {
		t.Fatalf("list trashed by category failed: %v", err)
	}
	if len(inTrash) != 1 || inTrash[0].ID != trashed.ID {
		t.Fatalf("trashed by category want 1 got %v", inTrash)
	}

	rows, total, err := repo.List(PostListFilter{Page: 1, PageSize: 10, InTrash: true})
	if err != nil {
		t.Fatalf("trash list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != trashed.ID {
		t.Fatalf("trash list want trashed post got total=%d rows=%v", total, rows)
	}
}

func TestPostCountBySlugSpansTrash(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewPostRepository(db)

	post := seedPost(t, repo, models.Post{Title: "Once", Slug: "once"})
	if err := repo.SoftDelete(post.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	count, err := repo.CountBySlug("once", nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count want 1 got %d", count)
	}

	count, err = repo.CountBySlug("once", &post.ID)
	if err != nil {
		t.Fatalf("count with exclude failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count excluding self want 0 got %d", count)
	}
}

func TestIncrementCountersRowsAffected(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewPostRepository(db)

	post := seedPost(t, repo, models.Post{Title: "Counter", Slug: "counter"})

	affected, err := repo.IncrementViewCount(post.ID)
	if err != nil || affected != 1 {
		t.Fatalf("increment view want 1 row got %d err=%v", affected, err)
	}
	affected, err = repo.IncrementLikeCount(9999)
	if err != nil || affected != 0 {
		t.Fatalf("increment missing want 0 rows got %d err=%v", affected, err)
	}
}

func TestTagRepositoryCountLivePosts(t *testing.T) {
	db := newRepoTestDB(t)
	posts := NewPostRepository(db)
	tags := NewTagRepository(db)

	tag := models.Tag{Name: "Go", Slug: "go"}
	if err := tags.Create(&tag); err != nil {
		t.Fatalf("create tag failed: %v", err)
	}

	post := seedPost(t, posts, models.Post{Title: "Tagged", Slug: "tagged"})
	if err := posts.ReplaceTags(post, []models.Tag{tag}); err != nil {
		t.Fatalf("replace tags failed: %v", err)
	}

	count, err := tags.CountLivePosts(tag.ID)
	if err != nil || count != 1 {
		t.Fatalf("live count want 1 got %d err=%v", count, err)
	}

	if err := posts.SoftDelete(post.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	count, err = tags.CountLivePosts(tag.ID)
	if err != nil || count != 0 {
		t.Fatalf("live count after trash want 0 got %d err=%v", count, err)
	}
}
