// Package mocks holds testify mocks of the platform collaborators.
package mocks

import (
	"image"

	"github.com/stretchr/testify/mock"
)

// -- Launcher Mock --

// MockLauncher mocks platform.Launcher.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch() error {
	args := m.Called()
	return args.Error(0)
}

// -- Screenshotter Mock --

// MockScreenshotter mocks platform.Screenshotter.
type MockScreenshotter struct {
	mock.Mock
}

func (m *MockScreenshotter) CaptureScreen() (image.Image, error) {
	args := m.Called()
	img, _ := args.Get(0).(image.Image)
	return img, args.Error(1)
}
