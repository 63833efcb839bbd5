package userservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockTokenService é uma implementação mock da interface TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func setup() (*userservice.UserService, *MockUserRepository, *MockTokenService) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenService)
	return userservice.NewService(repo, tokens, logger.NewNopLogger()), repo, tokens
}

func TestRegister_HashesPasswordAndDefaultsToCustomer(t *testing.T) {
	svc, repo, _ := setup()

	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleCustomer &&
			u.Email == "ana@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo123")) == nil
	})).Return(domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleCustomer}, nil)

	user, err := svc.Register(context.Background(), domain.UserRegistration{Name: "Ana", Email: " Ana@Example.com ", Password: "segredo123"})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	repo.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	svc, repo, _ := setup()

	cases := map[string]domain.UserRegistration{
		"campos vazios":  {},
		"email inválido": {Name: "Ana", Email: "ana", Password: "segredo123"},
		"senha curta":    {Name: "Ana", Email: "ana@example.com", Password: "123"},
	}
	for name, reg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), reg)
			assert.IsType(t, &apperror.ValidationError{}, err)
		})
	}
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmailPropagatesConflict(t *testing.T) {
	svc, repo, _ := setup()

	repo.On("Save", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewConflictError("email"))

	_, err := svc.Register(context.Background(), domain.UserRegistration{Name: "Ana", Email: "ana@example.com", Password: "segredo123"})

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestCreateEmployee_UsesEmployeeRole(t *testing.T) {
	svc, repo, _ := setup()

	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleEmployee
	})).Return(domain.User{ID: "u2", Role: domain.RoleEmployee}, nil)

	user, err := svc.CreateEmployee(context.Background(), domain.UserRegistration{Name: "Bia", Email: "bia@example.com", Password: "segredo123"})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, user.Role)
}

func TestLogin_Success(t *testing.T) {
	svc, repo, tokens := setup()
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(domain.User{ID: "u1", PasswordHash: string(hash), Role: domain.RoleCustomer}, nil)
	tokens.On("GenerateToken", "u1", "customer").Return("jwt", nil)

	token, err := svc.Login(context.Background(), "ana@example.com", "segredo123")

	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
}

func TestLogin_Failures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("email desconhecido", func(t *testing.T) {
		svc, repo, _ := setup()
		repo.On("FindByEmail", mock.Anything, "x@example.com").Return(domain.User{}, apperror.NewNotFoundError("usuário"))
		_, err := svc.Login(context.Background(), "x@example.com", "segredo123")
		assert.IsType(t, &apperror.UnauthorizedError{}, err)
	})

	t.Run("senha errada", func(t *testing.T) {
		svc, repo, _ := setup()
		repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(domain.User{ID: "u1", PasswordHash: string(hash)}, nil)
		_, err := svc.Login(context.Background(), "ana@example.com", "errada")
		assert.IsType(t, &apperror.UnauthorizedError{}, err)
	})

	t.Run("falha no token", func(t *testing.T) {
		svc, repo, tokens := setup()
		repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(domain.User{ID: "u1", PasswordHash: string(hash), Role: domain.RoleAdmin}, nil)
		tokens.On("GenerateToken", "u1", "admin").Return("", errors.New("sem chave"))
		_, err := svc.Login(context.Background(), "ana@example.com", "segredo123")
		assert.IsType(t, &apperror.InternalError{}, err)
	})
}
