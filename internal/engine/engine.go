// Package engine owns the window and the frame loop of the viewer.
package engine

import (
	"fmt"
	"path/filepath"
	"runtime"

	"SceneGL/internal/behaviour"
	"SceneGL/internal/config"
	"SceneGL/internal/logger"
	"SceneGL/internal/renderer"
	"SceneGL/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Degrees of orbit per pixel of right-button drag.
const mouseSensitivity = 0.25

type Engine struct {
	Config     config.Config
	Width      int32
	Height     int32
	Renderer   *renderer.OpenGLRenderer
	Scene      *scene.Scene
	Behaviours *behaviour.Manager
	// EnableCameraInput turns keyboard and mouse camera control on or off.
	EnableCameraInput bool

	window     *glfw.Window
	watcher    *LibraryWatcher
	lastX      float64
	lastY      float64
	firstMouse bool
}

func NewEngine(cfg config.Config) *Engine {
	return &Engine{
		Config:            cfg,
		Width:             cfg.Window.Width,
		Height:            cfg.Window.Height,
		Renderer:          renderer.NewOpenGLRenderer(cfg.Render),
		Behaviours:        behaviour.NewManager(),
		EnableCameraInput: true,
		firstMouse:        true,
	}
}

// Run opens the window, builds the scene at scenePath and renders it until
// the window closes. It must be called from the main goroutine.
func (e *Engine) Run(scenePath string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	desc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	e.window, err = glfw.CreateWindow(int(e.Width), int(e.Height), e.Config.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer e.window.Destroy()
	e.window.MakeContextCurrent()
	e.window.SetPos(e.Config.Window.X, e.Config.Window.Y)
	glfw.SwapInterval(1)

	fbWidth, fbHeight := e.window.GetFramebufferSize()
	if err := e.Renderer.Init(int32(fbWidth), int32(fbHeight)); err != nil {
		return err
	}
	defer e.Renderer.Cleanup()

	if err := e.load(desc, filepath.Dir(scenePath)); err != nil {
		return err
	}
	if e.watcher != nil {
		defer e.watcher.Close()
	}

	e.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	e.window.SetCursorPosCallback(e.mouseCallback)
	e.window.SetMouseButtonCallback(e.mouseButtonCallback)
	e.window.SetFramebufferSizeCallback(e.framebufferSizeCallback)

	logger.Log.Info("SceneGL running",
		zap.String("scene", scenePath),
		zap.Int32("width", e.Width),
		zap.Int32("height", e.Height))
	e.RenderLoop()
	return nil
}

// load builds the scene into the renderer and starts the library watcher.
func (e *Engine) load(desc *scene.Description, baseDir string) error {
	s, err := scene.Build(desc, baseDir, e.Renderer, e.Width, e.Height)
	if err != nil {
		return err
	}
	e.Scene = s

	fbWidth, fbHeight := e.window.GetFramebufferSize()
	s.Camera.Resize(int32(fbWidth), int32(fbHeight))
	if e.Config.Render.Fov > 0 && desc.Camera.Fov == 0 {
		s.Camera.SetFov(e.Config.Render.Fov)
	}
	for _, o := range s.Objects {
		e.Renderer.Add(o)
	}
	for _, b := range s.Behaviours {
		e.Behaviours.Add(b)
	}

	if !e.Config.Watch || len(s.Libraries) == 0 {
		return nil
	}
	e.watcher, err = NewLibraryWatcher(s.LibraryPaths())
	if err != nil {
		// the scene still renders without hot reload
		logger.Log.Warn("Material hot reload disabled", zap.Error(err))
		e.watcher = nil
	}
	return nil
}

func (e *Engine) RenderLoop() {
	lastTime := glfw.GetTime()

	for !e.window.ShouldClose() {
		currentTime := glfw.GetTime()
		deltaTime := currentTime - lastTime
		lastTime = currentTime

		e.applyReloads()

		if e.EnableCameraInput {
			e.Scene.Camera.ProcessKeyboard(e.window, float32(deltaTime))
		}
		e.Behaviours.UpdateAll(deltaTime)

		e.Renderer.Render(e.Scene.Camera, e.Scene.Light)

		e.window.SwapBuffers()
		glfw.PollEvents()
	}
}

// applyReloads hands libraries parsed by the watcher to the renderer. It runs
// on the render thread since texture uploads need the GL context.
func (e *Engine) applyReloads() {
	if e.watcher == nil {
		return
	}
	for _, r := range e.watcher.Drain() {
		e.Scene.Libraries[r.Path] = r.Library
		n := e.Renderer.ApplyLibrary(r.Path, r.Library)
		logger.Log.Info("Material library reloaded", zap.String("path", r.Path), zap.Int("materials", n))
	}
}

// Window returns the GLFW window, nil before Run.
func (e *Engine) Window() *glfw.Window {
	return e.window
}

func (e *Engine) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if width == 0 || height == 0 {
		// minimized
		return
	}
	e.Renderer.Resize(int32(width), int32(height))
	if e.Scene != nil {
		e.Scene.Camera.Resize(int32(width), int32(height))
	}
	e.Width, e.Height = int32(width), int32(height)
}

// mouseCallback orbits the camera while the right button is held.
func (e *Engine) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if !e.EnableCameraInput || w.GetAttrib(glfw.Focused) != glfw.True || w.GetMouseButton(glfw.MouseButtonRight) != glfw.Press {
		e.firstMouse = true
		return
	}
	if e.firstMouse {
		e.lastX, e.lastY = xpos, ypos
		e.firstMouse = false
		return
	}

	xoffset := xpos - e.lastX
	yoffset := e.lastY - ypos // Reversed since y-coordinates go from bottom to top
	e.lastX, e.lastY = xpos, ypos

	e.Scene.Camera.Orbit(float32(xoffset)*mouseSensitivity, -float32(yoffset)*mouseSensitivity)
}

// mouseButtonCallback picks the object under the cursor on left click.
func (e *Engine) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft || action != glfw.Press || e.Scene == nil {
		return
	}
	x, y := w.GetCursorPos()
	width, height := w.GetSize()
	if width == 0 || height == 0 {
		return
	}
	ray := e.Scene.Camera.ScreenRay(float32(x), float32(y), width, height)
	if o := e.Renderer.Pick(ray); o != nil {
		logger.Log.Info("Picked object", zap.String("name", o.Name), zap.String("id", o.ID.String()))
		return
	}
	logger.Log.Debug("Nothing picked", zap.Float64("x", x), zap.Float64("y", y))
}
