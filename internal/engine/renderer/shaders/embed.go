// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// PBRVertexShader is the vertex shader for lit model rendering.
//
//go:embed pbr.vert
var PBRVertexShader string

// PBRFragmentShader shades model surfaces with the light rig and environment.
//
//go:embed pbr.frag
var PBRFragmentShader string

// DepthVertexShader is the vertex shader for the shadow pass.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the fragment shader for the shadow pass.
//
//go:embed depth.frag
var DepthFragmentShader string

// SkyVertexShader draws a fullscreen triangle at the far plane.
//
//go:embed sky.vert
var SkyVertexShader string

// SkyFragmentShader samples the environment map as background.
//
//go:embed sky.frag
var SkyFragmentShader string

// LineVertexShader is the vertex shader for bounding box rendering.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for bounding box rendering.
//
//go:embed line.frag
var LineFragmentShader string
