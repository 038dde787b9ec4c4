// Package memory реализует все репозитории поверх общего состояния в памяти.
// Транзакции выполняются под глобальной блокировкой со снимком состояния для отката.
// Используется драйвером database.driver = "memory" и в тестах use case'ов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

type state struct {
	members    map[int64]domain.Member
	staff      map[int64]domain.Staff
	menus      map[int64]domain.ServiceMenu
	bookings   map[int64]domain.Booking
	shifts     []domain.Shift
	overrides  []domain.ShiftOverride
	prepaidTxs []domain.PrepaidTransaction
	chat       []domain.ChatMessage
	nextID     int64
}

func newState() *state {
	return &state{
		members:  make(map[int64]domain.Member),
		staff:    make(map[int64]domain.Staff),
		menus:    make(map[int64]domain.ServiceMenu),
		bookings: make(map[int64]domain.Booking),
	}
}

func (s *state) clone() *state {
	c := &state{
		members:    make(map[int64]domain.Member, len(s.members)),
		staff:      make(map[int64]domain.Staff, len(s.staff)),
		menus:      make(map[int64]domain.ServiceMenu, len(s.menus)),
		bookings:   make(map[int64]domain.Booking, len(s.bookings)),
		shifts:     append([]domain.Shift(nil), s.shifts...),
		overrides:  append([]domain.ShiftOverride(nil), s.overrides...),
		prepaidTxs: append([]domain.PrepaidTransaction(nil), s.prepaidTxs...),
		chat:       append([]domain.ChatMessage(nil), s.chat...),
		nextID:     s.nextID,
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.staff {
		c.staff[k] = v
	}
	for k, v := range s.menus {
		c.menus[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store хранилище в памяти
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string][]error
	now      func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		st:       newState(),
		failures: make(map[string][]error),
		now:      time.Now,
	}
}

type txKey struct{}

// lock захватывает хранилище, если вызов не находится внутри транзакции этого же хранилища
func (s *Store) lock(ctx context.Context) func() {
	if owner, ok := ctx.Value(txKey{}).(*Store); ok && owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// InjectError заставляет следующий вызов операции op (например "bookings.Create")
// вернуть err. Ошибки накапливаются и расходуются по очереди
func (s *Store) InjectError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// failure вызывается под блокировкой
func (s *Store) failure(op string) error {
	queue := s.failures[op]
	if len(queue) == 0 {
		return nil
	}
	s.failures[op] = queue[1:]
	return queue[0]
}

// Bookings репозиторий бронирований
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// Members репозиторий участников
func (s *Store) Members() *MemberRepository { return &MemberRepository{s: s} }

// Staff репозиторий тренеров
func (s *Store) Staff() *StaffRepository { return &StaffRepository{s: s} }

// Menus репозиторий меню услуг
func (s *Store) Menus() *MenuRepository { return &MenuRepository{s: s} }

// Chat репозиторий сообщений
func (s *Store) Chat() *ChatRepository { return &ChatRepository{s: s} }

// TxManager менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

// AddMember добавляет участника. Нулевой ID назначается автоматически
func (s *Store) AddMember(m domain.Member) domain.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.st.id()
	}
	s.st.members[m.ID] = m
	return m
}

// AddStaff добавляет тренера
func (s *Store) AddStaff(st domain.Staff) domain.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.st.id()
	}
	s.st.staff[st.ID] = st
	return st
}

// AddMenu добавляет меню услуги
func (s *Store) AddMenu(m domain.ServiceMenu) domain.ServiceMenu {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.st.id()
	}
	s.st.menus[m.ID] = m
	return m
}

// AddShift добавляет регулярную смену
func (s *Store) AddShift(sh domain.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh.ID = s.st.id()
	s.st.shifts = append(s.st.shifts, sh)
}

// AddOverride добавляет исключение из расписания
func (s *Store) AddOverride(o domain.ShiftOverride) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.st.id()
	s.st.overrides = append(s.st.overrides, o)
}

// AddBooking добавляет бронирование без проверок (для подготовки данных)
func (s *Store) AddBooking(b domain.Booking) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.st.id()
	}
	s.st.bookings[b.ID] = b
	return b
}

// AddChatMessage добавляет сообщение чата
func (s *Store) AddChatMessage(m domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.st.id()
	s.st.chat = append(s.st.chat, m)
}

// Member возвращает текущее состояние участника
func (s *Store) Member(id int64) (domain.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.st.members[id]
	return m, ok
}

// Booking возвращает текущее состояние бронирования
func (s *Store) Booking(id int64) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.bookings[id]
	return b, ok
}

// AllBookings возвращает все бронирования в порядке ID
func (s *Store) AllBookings() []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Booking, 0, len(s.st.bookings))
	for _, b := range s.st.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChatMessages возвращает журнал чата
func (s *Store) ChatMessages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.st.chat...)
}

// TxManager выполняет функции атомарно относительно всего хранилища
type TxManager struct {
	s *Store
}

// DoSerializable выполняет fn атомарно (блокировка всего хранилища сильнее SERIALIZABLE)
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s := m.s
	if owner, ok := ctx.Value(txKey{}).(*Store); ok && owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	if err := s.failure("tx.Commit"); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}
