// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	// Assigned through the interface so every DeviceProvider method is
	// exercised, AdapterInfo included.
	var dev DeviceHandle = NullDeviceHandle{}

	if dev.Device() != nil {
		t.Error("Device() != nil")
	}
	if dev.Queue() != nil {
		t.Error("Queue() != nil")
	}
	if dev.Adapter() != nil {
		t.Error("Adapter() != nil")
	}
	_ = dev.AdapterInfo()
	if got := dev.SurfaceFormat(); got != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v, want TextureFormatUndefined", got)
	}
}
