package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/pkg/apperr"
	"rice-bot/internal/pkg/logger"
)

// Submission итог отправки изображения.
type Submission struct {
	User       *entity.User // снимок состояния пользователя после отправки
	Generation int64        // номер этой отправки
	Superseded bool         // пока шла классификация, пользователь выбрал другое фото
}

type DetectionService struct {
	users       *UserService
	detector    port.Detector
	log         logger.Logger
	generations *atomic.Int64

	mu       sync.Mutex
	inflight map[int64]inflightCall
}

type inflightCall struct {
	generation int64
	cancel     context.CancelFunc
}

// NewDetectionService создаёт сервис, который ведёт экран результата через состояния
// ожидание -> обработка -> результат или ошибка.
func NewDetectionService(users *UserService, detector port.Detector, log logger.Logger) *DetectionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DetectionService{
		users:       users,
		detector:    detector,
		log:         log,
		generations: atomic.NewInt64(0),
		inflight:    make(map[int64]inflightCall),
	}
}

// Ticket активная отправка изображения. Контекст Ctx отменяется, когда
// пользователь выбирает другое фото или отменяет проверку.
type Ticket struct {
	UserID     int64
	ChatID     int64
	Generation int64

	ctx    context.Context // контекст вызывающего, для хранилища и логов
	runCtx context.Context
	cancel context.CancelFunc
}

// Ctx контекст для скачивания и классификации этой отправки.
func (t *Ticket) Ctx() context.Context {
	return t.runCtx
}

// Begin фиксирует выбор нового изображения: сбрасывает прежний результат,
// выдаёт номер отправки и отменяет незавершённую предыдущую отправку.
// Вызывается в момент получения фото, до его скачивания.
func (s *DetectionService) Begin(ctx context.Context, userID, chatID int64) (*Ticket, *entity.User, error) {
	ctx = logger.WithUserID(ctx, userID)
	gen := s.generations.Inc()

	user, err := s.users.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.Select(gen)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.track(userID, gen, cancel)

	return &Ticket{
		UserID:     userID,
		ChatID:     chatID,
		Generation: gen,
		ctx:        ctx,
		runCtx:     runCtx,
		cancel:     cancel,
	}, user, nil
}

// Run классифицирует изображение отправки t и применяет итог, если отправка
// всё ещё актуальна.
//
// Ошибка детектора возвращается как *apperr.Error вместе с Submission:
// состояние пользователя к этому моменту уже содержит сообщение об ошибке.
func (s *DetectionService) Run(t *Ticket, image []byte) (*Submission, error) {
	if s.detector == nil {
		s.release(t)
		return nil, errors.New("detector is not configured")
	}
	if err := t.runCtx.Err(); err != nil {
		return s.settle(t, nil, err)
	}

	s.log.Infof(t.ctx, "detection %d started: %d bytes", t.Generation, len(image))
	result, err := s.detector.Detect(t.runCtx, image)
	return s.settle(t, result, err)
}

// Abort завершает отправку t без классификации, например если фото не скачалось.
func (s *DetectionService) Abort(t *Ticket, cause error) (*Submission, error) {
	return s.settle(t, nil, cause)
}

// Submit выбирает изображение и сразу классифицирует его.
func (s *DetectionService) Submit(ctx context.Context, userID, chatID int64, image []byte) (*Submission, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	t, _, err := s.Begin(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return s.Run(t, image)
}

func (s *DetectionService) settle(t *Ticket, result *entity.DetectionResult, detectErr error) (*Submission, error) {
	defer s.release(t)

	// Отмена собственного контекста отправки не сбой: её вытеснили или отменили.
	abandoned := detectErr != nil && t.runCtx.Err() != nil && errors.Is(detectErr, context.Canceled)

	var applied bool
	user, err := s.users.Update(t.ctx, t.UserID, t.ChatID, func(u *entity.User) error {
		switch {
		case abandoned:
			u.Abandon(t.Generation)
		case detectErr != nil:
			applied = u.Fail(t.Generation, apperr.FromDetection(detectErr).Message)
		default:
			applied = u.Resolve(t.Generation, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sub := &Submission{User: user, Generation: t.Generation, Superseded: !applied}
	if !applied {
		s.log.Debugf(t.ctx, "detection %d superseded (current %d)", t.Generation, user.Generation)
		return sub, nil
	}

	if detectErr != nil {
		s.log.Errorf(t.ctx, "detection %d failed: %v", t.Generation, detectErr)
		return sub, apperr.FromDetection(detectErr)
	}

	s.log.Infof(t.ctx, "detection %d finished: view=%s", t.Generation, user.View())
	return sub, nil
}

func (s *DetectionService) release(t *Ticket) {
	t.cancel()
	s.untrack(t.UserID, t.Generation)
}

// Evaluate проводит одну классификацию на временном состоянии, без хранилища.
// Используется поверхностями без сессий.
func (s *DetectionService) Evaluate(ctx context.Context, image []byte) (*entity.User, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	gen := s.generations.Inc()
	u := entity.NewUser(0, 0)
	u.Select(gen)

	result, err := s.detector.Detect(ctx, image)
	if err != nil {
		appErr := apperr.FromDetection(err)
		s.log.Errorf(ctx, "detection %d failed: %v", gen, err)
		u.Fail(gen, appErr.Message)
		return u, appErr
	}

	u.Resolve(gen, result)
	s.log.Infof(ctx, "detection %d finished: view=%s", gen, u.View())
	return u, nil
}

// track регистрирует вызов и отменяет предыдущий вызов того же пользователя.
// Если уже зарегистрирован более новый вызов, отменяется сам gen.
func (s *DetectionService) track(userID, gen int64, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[userID]; ok {
		if prev.generation > gen {
			cancel()
			return
		}
		prev.cancel()
	}
	s.inflight[userID] = inflightCall{generation: gen, cancel: cancel}
}

func (s *DetectionService) untrack(userID, gen int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.inflight[userID]; ok && cur.generation == gen {
		delete(s.inflight, userID)
	}
}

// CancelPending отменяет идущую классификацию пользователя, если она есть.
func (s *DetectionService) CancelPending(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.inflight[userID]; ok {
		cur.cancel()
		delete(s.inflight, userID)
	}
}
