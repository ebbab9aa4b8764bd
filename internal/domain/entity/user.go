package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото листа
	StateProcessing    UserState = "processing"     // Идёт классификация
)

// User представляет пользователя и состояние его экрана с результатом
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя

	Result     *DetectionResult // последний результат, nil если его нет
	Error      string           // текст ошибки для пользователя
	Generation int64            // номер активной отправки изображения
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// IsProcessing сообщает, ждёт ли пользователь результата классификации.
func (u *User) IsProcessing() bool {
	return u.State == StateProcessing
}

// View возвращает текущее состояние отображения результата.
func (u *User) View() ViewState {
	return ResolveView(u.Result, u.IsProcessing())
}

// Select фиксирует выбор нового изображения: прежний результат и ошибка
// сбрасываются, активной становится отправка gen.
func (u *User) Select(gen int64) {
	u.Result = nil
	u.Error = ""
	u.Generation = gen
	u.State = StateProcessing
}

// Resolve применяет результат отправки gen. Устаревшие отправки игнорируются.
func (u *User) Resolve(gen int64, result *DetectionResult) bool {
	if gen != u.Generation {
		return false
	}
	u.Result = result.Clone()
	u.Error = ""
	u.State = StateMainMenu
	return true
}

// Fail фиксирует сбой отправки gen: результат остаётся пустым.
func (u *User) Fail(gen int64, message string) bool {
	if gen != u.Generation {
		return false
	}
	u.Result = nil
	u.Error = message
	u.State = StateMainMenu
	return true
}

// Abandon снимает обработку отправки gen без ошибки: её отменил сам
// пользователь. Устаревшие отправки игнорируются.
func (u *User) Abandon(gen int64) bool {
	if gen != u.Generation {
		return false
	}
	u.Reset()
	u.Generation = 0
	return true
}

// Reset возвращает экран в исходное состояние.
func (u *User) Reset() {
	u.Result = nil
	u.Error = ""
	u.State = StateMainMenu
}

// Clone возвращает независимую копию пользователя.
func (u *User) Clone() *User {
	out := *u
	out.Result = u.Result.Clone()
	return &out
}
