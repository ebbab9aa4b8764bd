package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/infrastructure/storage"
	"rice-bot/internal/pkg/apperr"
	"rice-bot/internal/render"
)

type detectorFunc func(ctx context.Context, image []byte) (*entity.DetectionResult, error)

func (f detectorFunc) Detect(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
	return f(ctx, image)
}

func newService(d detectorFunc) (*DetectionService, *UserService) {
	users := NewUserService(storage.NewMemoryUserRepository())
	return NewDetectionService(users, d, nil), users
}

func riceBlastResult() *entity.DetectionResult {
	return entity.NewLeafResult(0.995, &entity.Disease{
		Name:           "Rice Blast",
		ScientificName: "Magnaporthe oryzae",
		Description:    "...",
		ImageURL:       "...",
		Symptoms:       []string{"Brown lesions"},
		Treatment:      []string{"Use resistant varieties"},
	})
}

func TestDetectionService_LeafWithDiagnosis(t *testing.T) {
	svc, _ := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		return riceBlastResult(), nil
	})

	sub, err := svc.Submit(context.Background(), 1, 10, []byte("image A"))
	require.NoError(t, err)
	require.False(t, sub.Superseded)
	require.Equal(t, entity.ViewDiagnosis, sub.User.View())

	out, err := render.NewText().Render(sub.User.Result, sub.User.IsProcessing())
	require.NoError(t, err)
	require.Contains(t, out, "Confidence: 99.50%")
	require.Contains(t, out, "Rice Blast")
	require.Contains(t, out, "Use resistant varieties")
}

func TestDetectionService_NotALeaf(t *testing.T) {
	svc, _ := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		return entity.NewNotLeafResult(0.12), nil
	})

	sub, err := svc.Submit(context.Background(), 1, 10, []byte("image B"))
	require.NoError(t, err)
	require.Equal(t, entity.ViewNotALeaf, sub.User.View())

	out, err := render.NewText().Render(sub.User.Result, false)
	require.NoError(t, err)
	require.Contains(t, out, "Not a Rice Leaf")
	require.NotContains(t, out, render.HeadingSymptoms)
}

func TestDetectionService_TransportFailure(t *testing.T) {
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		return nil, fmt.Errorf("send request: %w", entity.ErrTransport)
	})

	sub, err := svc.Submit(context.Background(), 1, 10, []byte("image C"))
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	require.True(t, appErr.Retryable)
	require.ErrorIs(t, err, entity.ErrTransport)

	require.False(t, sub.User.IsProcessing())
	require.Nil(t, sub.User.Result)
	require.Equal(t, apperr.MsgProcessingError, sub.User.Error)

	stored, _ := users.Get(context.Background(), 1, 10)
	require.Equal(t, apperr.MsgProcessingError, stored.Error)
}

func TestDetectionService_EmptyImage(t *testing.T) {
	svc, _ := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		return nil, entity.ErrEmptyImage
	})

	sub, err := svc.Submit(context.Background(), 1, 10, nil)
	require.ErrorIs(t, err, entity.ErrEmptyImage)
	require.Equal(t, apperr.MsgEmptyImage, sub.User.Error)
}

func TestDetectionService_NewSubmissionSupersedesPending(t *testing.T) {
	started := make(chan struct{})
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		if string(image) == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return entity.NewNotLeafResult(0.2), nil
	})
	ctx := context.Background()

	type outcome struct {
		sub *Submission
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		sub, err := svc.Submit(ctx, 1, 10, []byte("slow"))
		first <- outcome{sub, err}
	}()
	<-started

	second, err := svc.Submit(ctx, 1, 10, []byte("fast"))
	require.NoError(t, err)
	require.False(t, second.Superseded)

	late := <-first
	require.NoError(t, late.err)
	require.True(t, late.sub.Superseded)
	require.Less(t, late.sub.Generation, second.Generation)

	user, _ := users.Get(ctx, 1, 10)
	require.Equal(t, entity.ViewNotALeaf, user.View())
	require.Empty(t, user.Error)
}

func TestDetectionService_CancelIgnoresLateResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		close(started)
		<-release
		return riceBlastResult(), nil
	})
	ctx := context.Background()

	done := make(chan *Submission, 1)
	go func() {
		sub, _ := svc.Submit(ctx, 1, 10, []byte("img"))
		done <- sub
	}()
	<-started

	_, err := users.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	close(release)

	sub := <-done
	require.True(t, sub.Superseded)

	user, _ := users.Get(ctx, 1, 10)
	require.Equal(t, entity.ViewIdle, user.View())
}

func TestDetectionService_CancelPendingIsNotAFailure(t *testing.T) {
	started := make(chan struct{})
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	type outcome struct {
		sub *Submission
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		sub, err := svc.Submit(context.Background(), 1, 10, []byte("img"))
		done <- outcome{sub, err}
	}()
	<-started
	svc.CancelPending(1)

	got := <-done
	require.NoError(t, got.err)
	require.True(t, got.sub.Superseded)
	require.False(t, got.sub.User.IsProcessing())
	require.Empty(t, got.sub.User.Error)

	user, _ := users.Get(context.Background(), 1, 10)
	require.Equal(t, entity.ViewIdle, user.View())
	require.Empty(t, user.Error)
}

func TestDetectionService_BeginCheckDuringDetection(t *testing.T) {
	started := make(chan struct{})
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ctx := context.Background()

	type outcome struct {
		sub *Submission
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		sub, err := svc.Submit(ctx, 1, 10, []byte("img"))
		done <- outcome{sub, err}
	}()
	<-started

	// тот же порядок, что в обработчике /check
	svc.CancelPending(1)
	_, err := users.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)

	got := <-done
	require.NoError(t, got.err)
	require.True(t, got.sub.Superseded)

	user, _ := users.Get(ctx, 1, 10)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
	require.Empty(t, user.Error)
	require.Nil(t, user.Result)
}

func TestDetectionService_BeginSupersedesBeforeRun(t *testing.T) {
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		if string(image) == "A" {
			return riceBlastResult(), nil
		}
		return entity.NewNotLeafResult(0.2), nil
	})
	ctx := context.Background()

	first, user, err := svc.Begin(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, user.IsProcessing())

	second, _, err := svc.Begin(ctx, 1, 10)
	require.NoError(t, err)
	require.Error(t, first.Ctx().Err())

	sub, err := svc.Run(second, []byte("B"))
	require.NoError(t, err)
	require.False(t, sub.Superseded)

	// первое фото "скачалось" позже второго
	sub, err = svc.Run(first, []byte("A"))
	require.NoError(t, err)
	require.True(t, sub.Superseded)

	user, _ = users.Get(ctx, 1, 10)
	require.Equal(t, entity.ViewNotALeaf, user.View())
}

func TestDetectionService_AbortDownloadFailure(t *testing.T) {
	svc, users := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		return riceBlastResult(), nil
	})
	ctx := context.Background()

	ticket, _, err := svc.Begin(ctx, 1, 10)
	require.NoError(t, err)

	sub, err := svc.Abort(ticket, fmt.Errorf("download: %w", entity.ErrTransport))
	require.ErrorIs(t, err, entity.ErrTransport)
	require.False(t, sub.Superseded)

	user, _ := users.Get(ctx, 1, 10)
	require.False(t, user.IsProcessing())
	require.Equal(t, apperr.MsgProcessingError, user.Error)
}

func TestDetectionService_Evaluate(t *testing.T) {
	svc, _ := newService(func(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
		if len(image) == 0 {
			return nil, entity.ErrEmptyImage
		}
		return riceBlastResult(), nil
	})

	user, err := svc.Evaluate(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Equal(t, entity.ViewDiagnosis, user.View())

	user, err = svc.Evaluate(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, entity.ViewIdle, user.View())
	require.Equal(t, apperr.MsgEmptyImage, user.Error)
}

func TestDetectionService_NoDetector(t *testing.T) {
	svc := NewDetectionService(NewUserService(storage.NewMemoryUserRepository()), nil, nil)
	_, err := svc.Submit(context.Background(), 1, 10, []byte("img"))
	require.EqualError(t, err, "detector is not configured")
}
