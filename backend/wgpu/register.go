// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import "github.com/gogpu/camstudio/render"

func init() {
	render.RegisterBackend("wgpu", 100, New, nil)
}
