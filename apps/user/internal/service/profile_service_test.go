package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"DateServer/apps/user/internal/dto"
	"DateServer/consts"
	"DateServer/pkg/minio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploadFn func(ctx context.Context, reader io.Reader, size int64, opts minio.UploadOptions) (*minio.UploadResult, error)
}

func (f *fakeUploader) Upload(ctx context.Context, reader io.Reader, size int64, opts minio.UploadOptions) (*minio.UploadResult, error) {
	return f.uploadFn(ctx, reader, size, opts)
}

func newProfileFixture(uploader Uploader) (*memUserRepository, *fakeCardCache, IProfileService) {
	initServiceTestLogger()
	repo := newMemUserRepository(newTestUser("alice"))
	cards := &fakeCardCache{users: repo}
	return repo, cards, NewProfileService(repo, cards, uploader)
}

func TestProfileService_GetMe(t *testing.T) {
	_, _, svc := newProfileFixture(nil)

	p, err := svc.GetMe(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.NotNil(t, p.Likes)
	assert.NotNil(t, p.Shows)

	_, err = svc.GetMe(context.Background(), "ghost")
	requireAppCode(t, err, consts.CodeUserNotFound)
}

func TestProfileService_UpdateProfileWithLinks(t *testing.T) {
	repo, cards, svc := newProfileFixture(nil)

	p, err := svc.UpdateProfile(context.Background(), "alice", &dto.UpdateProfileRequest{
		FirstName: "Alicia",
		Interests: "  climbing ",
		Links: &dto.LinksInput{
			Imdb:    &dto.LinkInput{URL: "https://www.imdb.com/user/ur1", IsPublic: true},
			Twitter: &dto.LinkInput{URL: "https://x.com/alice"},
			Spotify: &dto.LinkInput{URL: ""},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.FirstName)
	assert.Equal(t, "Tester", p.LastName)
	assert.Equal(t, "climbing", p.Interests)

	links := repo.get("alice").Links
	require.NotNil(t, links)
	assert.True(t, links.Imdb.IsPublic)
	assert.False(t, links.Twitter.IsPublic)
	assert.Nil(t, links.Spotify)
	assert.Equal(t, []string{"alice"}, cards.invalidated)
}

func TestProfileService_UpdateProfileRejectsForeignHost(t *testing.T) {
	_, cards, svc := newProfileFixture(nil)

	_, err := svc.UpdateProfile(context.Background(), "alice", &dto.UpdateProfileRequest{
		Interests: "x",
		Links:     &dto.LinksInput{Insta: &dto.LinkInput{URL: "https://evil-instagram.com/alice"}},
	})
	requireAppCode(t, err, consts.CodeParamError)
	assert.Empty(t, cards.invalidated)
}

func TestHostMatches(t *testing.T) {
	assert.True(t, hostMatches("https://instagram.com/a", "instagram.com"))
	assert.True(t, hostMatches("https://www.instagram.com/a", "instagram.com"))
	assert.True(t, hostMatches("http://open.spotify.com/user/1", "spotify.com"))
	assert.False(t, hostMatches("https://notinstagram.com/a", "instagram.com"))
	assert.False(t, hostMatches("ftp://instagram.com/a", "instagram.com"))
	assert.False(t, hostMatches("instagram.com/a", "instagram.com"))
}

func TestProfileService_UpdateDetailsAndShows(t *testing.T) {
	repo, _, svc := newProfileFixture(nil)
	ctx := context.Background()

	_, err := svc.UpdateDetails(ctx, "alice", &dto.UpdateDetailsRequest{
		Age: 30, Gender: "Female", Height: 165, Location: "Berlin", BodyType: "Curvy",
		Drinking: "No", Smoking: "No", RelationshipStatus: "Single",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, repo.get("alice").Details.Age)
	assert.Equal(t, "Berlin", repo.get("alice").Details.Location)

	p, err := svc.UpdateShows(ctx, "alice", &dto.UpdateShowsRequest{Shows: []dto.ShowInput{
		{OriginalName: "Dark", PosterURL: "https://cdn.example.com/dark.jpg"},
	}})
	require.NoError(t, err)
	require.Len(t, p.Shows, 1)
	assert.Equal(t, "Dark", p.Shows[0].OriginalName)

	_, err = svc.UpdateShows(ctx, "ghost", &dto.UpdateShowsRequest{})
	requireAppCode(t, err, consts.CodeUserNotFound)
}

func TestProfileService_UploadPoster(t *testing.T) {
	uploader := &fakeUploader{uploadFn: func(ctx context.Context, reader io.Reader, size int64, opts minio.UploadOptions) (*minio.UploadResult, error) {
		assert.Equal(t, "posters/", opts.PathPrefix)
		assert.Equal(t, "alice", opts.Metadata["user-id"])
		return &minio.UploadResult{ObjectName: "posters/x.png", Size: size, URL: "http://minio/posters/x.png"}, nil
	}}
	_, _, svc := newProfileFixture(uploader)

	resp, err := svc.UploadPoster(context.Background(), "alice", strings.NewReader("png"), 3, "x.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://minio/posters/x.png", resp.PosterURL)
}

func TestProfileService_UploadPosterErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: 10MB", minio.ErrFileTooLarge), consts.CodeFileTooLarge},
		{minio.ErrFileTypeNotAllow, consts.CodeFileTypeError},
		{minio.ErrExtensionForged, consts.CodeFileTypeError},
		{errors.New("connection refused"), consts.CodeServiceUnavailable},
	}
	for _, tc := range cases {
		uploadErr := tc.err
		_, _, svc := newProfileFixture(&fakeUploader{uploadFn: func(context.Context, io.Reader, int64, minio.UploadOptions) (*minio.UploadResult, error) {
			return nil, uploadErr
		}})
		_, err := svc.UploadPoster(context.Background(), "alice", strings.NewReader("x"), 1, "x.png", "")
		requireAppCode(t, err, tc.code)
	}

	_, _, svc := newProfileFixture(nil)
	_, err := svc.UploadPoster(context.Background(), "alice", strings.NewReader("x"), 1, "x.png", "")
	requireAppCode(t, err, consts.CodeServiceUnavailable)
}

func TestProfileService_GetCard(t *testing.T) {
	_, _, svc := newProfileFixture(nil)

	card, err := svc.GetCard(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", card.FirstName)

	_, err = svc.GetCard(context.Background(), "ghost")
	requireAppCode(t, err, consts.CodeUserNotFound)
}
