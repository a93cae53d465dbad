package mocks

import "github.com/stretchr/testify/mock"

// testingT は mockery の New* コンストラクタと同じ制約です。
type testingT interface {
	mock.TestingT
	Cleanup(func())
}
