package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/calligro/registration-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, o *domain.EmailOtp) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockStore) Get(ctx context.Context, email string) (*domain.EmailOtp, error) {
	args := m.Called(ctx, email)
	if o, _ := args.Get(0).(*domain.EmailOtp); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Consume(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- Request tests ---

func TestRequest_MissingEmail(t *testing.T) {
	st := &mockStore{}
	ml := &mockMailer{}

	svc := NewService(st, ml)
	err := svc.Request(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	st.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequest_NoMailer_NoSideEffects(t *testing.T) {
	st := &mockStore{}

	svc := NewService(st, nil)
	err := svc.Request(context.Background(), "jane@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	st.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRequest_HappyPath_PersistsBeforeSending(t *testing.T) {
	st := &mockStore{}
	ml := &mockMailer{}

	var calls []string
	var stored *domain.EmailOtp
	st.On("Put", mock.Anything, mock.AnythingOfType("*domain.EmailOtp")).Run(func(args mock.Arguments) {
		calls = append(calls, "put")
		stored = args.Get(1).(*domain.EmailOtp)
	}).Return(nil)
	ml.On("SendEmail", "jane@example.com", "Your OTP Code", mock.Anything).Run(func(mock.Arguments) {
		calls = append(calls, "send")
	}).Return(nil)

	svc := NewService(st, ml)
	require.NoError(t, svc.Request(context.Background(), "jane@example.com"))

	require.Equal(t, []string{"put", "send"}, calls)
	require.NotNil(t, stored)
	assert.Equal(t, "jane@example.com", stored.Email)
	assert.Len(t, stored.Code, 6)

	// 10-minute window, allowing a little slack for test execution.
	want := time.Now().Add(TTL).Unix()
	assert.InDelta(t, want, stored.ExpiresAt, 5)

	// The mailed body carries the exact code.
	body := ml.Calls[0].Arguments.String(2)
	assert.Contains(t, body, stored.Code)
	assert.Contains(t, body, "valid for 10 minutes")
}

func TestRequest_StoreFailure_NoEmailSent(t *testing.T) {
	st := &mockStore{}
	ml := &mockMailer{}
	st.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := NewService(st, ml)
	err := svc.Request(context.Background(), "jane@example.com")

	require.Error(t, err)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequest_MailFailure_RecordStaysPersisted(t *testing.T) {
	st := &mockStore{}
	ml := &mockMailer{}
	st.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("relay refused"))

	svc := NewService(st, ml)
	err := svc.Request(context.Background(), "jane@example.com")

	require.Error(t, err)
	assert.ErrorContains(t, err, "relay refused")
	// The write happened before the failed send; nothing rolls it back.
	st.AssertCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Verify tests ---

func validRecord(code string) *domain.EmailOtp {
	return &domain.EmailOtp{
		Email:     "jane@example.com",
		Code:      code,
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}
}

func TestVerify_MissingInputs(t *testing.T) {
	st := &mockStore{}
	svc := NewService(st, &mockMailer{})

	for _, tc := range []struct{ email, code string }{
		{"", "123456"},
		{"jane@example.com", ""},
		{"", ""},
	} {
		valid, err := svc.Verify(context.Background(), tc.email, tc.code)
		require.NoError(t, err)
		assert.False(t, valid)
	}
	st.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestVerify_NoRecord(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "jane@example.com").
		Return(nil, fmt.Errorf("otp for jane@example.com: %w", domain.ErrNotFound))

	svc := NewService(st, &mockMailer{})
	valid, err := svc.Verify(context.Background(), "jane@example.com", "123456")

	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerify_StoreError_Surfaced(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("dynamo down"))

	svc := NewService(st, &mockMailer{})
	valid, err := svc.Verify(context.Background(), "jane@example.com", "123456")

	require.Error(t, err)
	assert.False(t, valid)
}

func TestVerify_WrongCode_LeavesRecord(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "jane@example.com").Return(validRecord("123456"), nil)

	svc := NewService(st, &mockMailer{})
	valid, err := svc.Verify(context.Background(), "jane@example.com", "654321")

	require.NoError(t, err)
	assert.False(t, valid)
	st.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_ExpiredCode_LeavesRecord(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "jane@example.com").Return(&domain.EmailOtp{
		Email:     "jane@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Second).Unix(),
	}, nil)

	svc := NewService(st, &mockMailer{})
	valid, err := svc.Verify(context.Background(), "jane@example.com", "123456")

	require.NoError(t, err)
	assert.False(t, valid)
	st.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_HappyPath_ConsumesOnce(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "jane@example.com").Return(validRecord("123456"), nil)
	st.On("Consume", mock.Anything, "jane@example.com", "123456").Return(true, nil)

	svc := NewService(st, &mockMailer{})
	valid, err := svc.Verify(context.Background(), "jane@example.com", "123456")

	require.NoError(t, err)
	assert.True(t, valid)
	st.AssertExpectations(t)
}

func TestVerify_LostConsumeRace_ReportsInvalid(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "jane@example.com").Return(validRecord("123456"), nil)
	// A concurrent verifier deleted the record between the read and the
	// conditional delete.
	st.On("Consume", mock.Anything, "jane@example.com", "123456").Return(false, nil)

	svc := NewService(st, &mockMailer{})
	valid, err := svc.Verify(context.Background(), "jane@example.com", "123456")

	require.NoError(t, err)
	assert.False(t, valid)
}

// --- lifecycle ---

// fakeStore mirrors the DynamoDB repo's contract in memory: last-write-wins
// Put keyed by email, and a compare-and-delete Consume.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]domain.EmailOtp
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]domain.EmailOtp)}
}

func (f *fakeStore) Put(_ context.Context, o *domain.EmailOtp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[o.Email] = *o
	return nil
}

func (f *fakeStore) Get(_ context.Context, email string) (*domain.EmailOtp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.records[email]
	if !ok {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	return &o, nil
}

func (f *fakeStore) Consume(_ context.Context, email, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.records[email]
	if !ok || o.Code != code {
		return false, nil
	}
	delete(f.records, email)
	return true, nil
}

func (f *fakeStore) code(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[email].Code
}

func TestLifecycle_ReRequestInvalidatesPreviousCode(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := NewService(st, ml)

	require.NoError(t, svc.Request(ctx, "jane@example.com"))
	first := st.code("jane@example.com")

	// Re-request until the draw differs from the first code, so the
	// invalidation below is unambiguous.
	second := first
	for i := 0; second == first && i < 5; i++ {
		require.NoError(t, svc.Request(ctx, "jane@example.com"))
		second = st.code("jane@example.com")
	}
	require.NotEqual(t, first, second)

	// The overwritten code is dead, and the failed attempt must not
	// disturb the live record.
	valid, err := svc.Verify(ctx, "jane@example.com", first)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = svc.Verify(ctx, "jane@example.com", second)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestLifecycle_CodeConsumedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := NewService(st, ml)

	require.NoError(t, svc.Request(ctx, "jane@example.com"))
	code := st.code("jane@example.com")

	valid, err := svc.Verify(ctx, "jane@example.com", code)
	require.NoError(t, err)
	assert.True(t, valid)

	// Same correct code again: the record is gone.
	valid, err = svc.Verify(ctx, "jane@example.com", code)
	require.NoError(t, err)
	assert.False(t, valid)
}

// --- code generation ---

func TestGenerateCode_SixDigitsNoLeadingZero(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
