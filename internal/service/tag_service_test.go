package service

import (
	"errors"
	"testing"

	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/repository"

	"gorm.io/gorm"
)

func newTestTagService(t *testing.T, db *gorm.DB) *TagService {
	t.Helper()
	return NewTagService(db, repository.NewTagRepository(db))
}

func TestCreateTagUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTagService(t, db)

	if _, err := svc.Create(CreateTagInput{Name: "Go", Slug: "go", Color: "#00ADD8"}); err != nil {
		t.Fatalf("create tag failed: %v", err)
	}
	if _, err := svc.Create(CreateTagInput{Name: "Go", Slug: "go-2"}); !errors.Is(err, ErrNameExists) {
		t.Fatalf("want ErrNameExists got %v", err)
	}
	if _, err := svc.Create(CreateTagInput{Name: "Go 2", Slug: "go"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("want ErrSlugExists got %v", err)
	}
}

func TestUpdateTagPartial(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTagService(t, db)

	tag, err := svc.Create(CreateTagInput{Name: "Docker", Slug: "docker", Color: "#2496ED"})
	if err != nil {
		t.Fatalf("create tag failed: %v", err)
	}

	color := "#0066CC"
	updated, err := svc.Update(tag.ID, UpdateTagInput{Color: &color})
	if err != nil {
		t.Fatalf("update tag failed: %v", err)
	}
	if updated.Name != "Docker" || updated.Slug != "docker" || updated.Color != "#0066CC" {
		t.Fatalf("unexpected tag after update: %+v", updated)
	}

	if _, err := svc.Update(999, UpdateTagInput{Color: &color}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestDeleteTagBlockedWhenReferenced(t *testing.T) {
	db := newTestDB(t)
	tags := newTestTagService(t, db)
	posts := newTestPostService(t, db, "")

	tag, err := tags.Create(CreateTagInput{Name: "K8s", Slug: "k8s"})
	if err != nil {
		t.Fatalf("create tag failed: %v", err)
	}
	post, err := posts.Create(CreatePostInput{
		Title: "K8s Post", Slug: "k8s-post",
		Status: constants.PostStatusPublished, TagIDs: []uint{tag.ID},
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	err = tags.Delete(tag.ID)
	if !errors.Is(err, ErrTagHasPosts) {
		t.Fatalf("want ErrTagHasPosts got %v", err)
	}
	var inUse *TagInUseError
	if !errors.As(err, &inUse) || inUse.PostCount != 1 {
		t.Fatalf("want TagInUseError with count 1, got %v", err)
	}

	// 文章入回收站后标签可删
	if err := posts.SoftDelete(post.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if err := tags.Delete(tag.ID); err != nil {
		t.Fatalf("delete tag after trash failed: %v", err)
	}
	if _, err := tags.GetByID(tag.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("tag should be gone, got %v", err)
	}
}
