package service

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/user/cinematch/internal/model"
	"github.com/user/cinematch/internal/repository"
)

// OpRegister / OpLogin 账号操作名
const (
	OpRegister = "register"
	OpLogin    = "login"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// AccountService 注册与密码校验
type AccountService struct {
	users *repository.UserRepository
}

func NewAccountService(users *repository.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// Register 注册新用户，用户名已存在返回 KindUsernameTaken
func (s *AccountService) Register(username, password string) (*model.User, error) {
	user, err := s.users.Create(username, password)
	if errors.Is(err, repository.ErrUsernameTaken) {
		return nil, &Error{Kind: KindUsernameTaken, Op: OpRegister, Message: "Username already exists"}
	}
	if err != nil {
		logrus.WithError(err).WithField("username", username).Error("[Auth] 创建用户失败")
		return nil, err
	}

	logrus.WithField("username", username).Info("[Auth] 新用户注册")
	return user, nil
}

// Verify 校验用户名和密码
// 用户不存在与密码错误返回同一种错误，且都会做一次 bcrypt 比对
func (s *AccountService) Verify(username, password string) (*model.User, error) {
	invalid := &Error{Kind: KindInvalidCredentials, Op: OpLogin, Message: "Invalid credentials"}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		logrus.WithError(err).WithField("username", username).Error("[Auth] 查询用户失败")
		return nil, err
	}

	if user == nil {
		repository.ComparePassword(placeholderHash(), password)
		return nil, invalid
	}

	if !s.users.CheckPassword(user, password) {
		return nil, invalid
	}

	return user, nil
}

func placeholderHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = repository.HashPassword("cinematch-placeholder")
	})
	return dummyHash
}
