package quiz

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// Particle is a single piece of confetti in surface coordinates.
type Particle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"-"`
	VY       float64 `json:"-"`
	Rotation float64 `json:"r"`
	Spin     float64 `json:"-"`
	Color    string  `json:"c"`
}

// Frame is what a Surface draws on each tick.
type Frame struct {
	Index     int        `json:"index"`
	Particles []Particle `json:"particles"`
}

// Surface renders confetti frames. Returning an error stops the animation.
type Surface interface {
	Draw(frame Frame) error
}

// FrameScheduler runs fn on the next frame and returns a cancel handle.
type FrameScheduler interface {
	Schedule(fn func()) (cancel func())
}

// TickerScheduler schedules frames at a fixed rate using timers.
type TickerScheduler struct {
	Interval time.Duration
}

// NewTickerScheduler returns a scheduler running at fps frames per second.
func NewTickerScheduler(fps int) TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return TickerScheduler{Interval: time.Second / time.Duration(fps)}
}

func (t TickerScheduler) Schedule(fn func()) func() {
	timer := time.AfterFunc(t.Interval, fn)
	return func() { timer.Stop() }
}

// ConfettiConfig sizes the effect.
type ConfettiConfig struct {
	Particles int
	Frames    int
	Width     float64
	Height    float64
	Gravity   float64
}

// DefaultConfettiConfig is roughly three seconds of confetti at 60fps.
func DefaultConfettiConfig() ConfettiConfig {
	return ConfettiConfig{
		Particles: 120,
		Frames:    180,
		Width:     400,
		Height:    300,
		Gravity:   0.25,
	}
}

var confettiColors = []string{"#f94144", "#f3722c", "#f9c74f", "#90be6d", "#43aa8b", "#577590"}

// Confetti owns one run of the particle animation. It stops by itself after
// the frame budget or once every particle has fallen off the surface.
type Confetti struct {
	cfg       ConfettiConfig
	scheduler FrameScheduler
	surface   Surface

	mu        sync.Mutex
	rnd       *rand.Rand
	particles []Particle
	frame     int
	running   bool
	run       int
	cancel    func()
}

func NewConfetti(cfg ConfettiConfig, scheduler FrameScheduler, surface Surface) *Confetti {
	def := DefaultConfettiConfig()
	if cfg.Particles <= 0 {
		cfg.Particles = def.Particles
	}
	if cfg.Frames <= 0 {
		cfg.Frames = def.Frames
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Gravity <= 0 {
		cfg.Gravity = def.Gravity
	}
	return &Confetti{
		cfg:       cfg,
		scheduler: scheduler,
		surface:   surface,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches a burst. It does nothing while a burst is already running.
func (c *Confetti) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	c.run++
	c.frame = 0
	c.particles = c.spawnLocked()
	c.scheduleLocked(c.run)
	return true
}

// Cancel stops the animation and drops any pending frame.
func (c *Confetti) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Running reports whether frames are still being produced.
func (c *Confetti) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Frames returns how many frames the current or last run has drawn.
func (c *Confetti) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *Confetti) scheduleLocked(run int) {
	c.cancel = c.scheduler.Schedule(func() { c.tick(run) })
}

func (c *Confetti) tick(run int) {
	c.mu.Lock()
	if !c.running || run != c.run {
		c.mu.Unlock()
		return
	}
	c.frame++
	c.stepLocked()
	frame := Frame{Index: c.frame, Particles: append([]Particle(nil), c.particles...)}
	c.mu.Unlock()

	err := c.surface.Draw(frame)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || run != c.run {
		return
	}
	if err != nil {
		log.Printf("confetti draw failed, stopping: %v", err)
		c.stopLocked()
		return
	}
	if c.frame >= c.cfg.Frames || len(c.particles) == 0 {
		c.stopLocked()
		return
	}
	c.scheduleLocked(run)
}

func (c *Confetti) stopLocked() {
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Confetti) spawnLocked() []Particle {
	particles := make([]Particle, c.cfg.Particles)
	for i := range particles {
		particles[i] = Particle{
			X:        c.cfg.Width/2 + (c.rnd.Float64()-0.5)*c.cfg.Width*0.3,
			Y:        c.cfg.Height * 0.6,
			VX:       (c.rnd.Float64() - 0.5) * 12,
			VY:       -(c.rnd.Float64()*8 + 6),
			Rotation: c.rnd.Float64() * 360,
			Spin:     (c.rnd.Float64() - 0.5) * 20,
			Color:    confettiColors[c.rnd.Intn(len(confettiColors))],
		}
	}
	return particles
}

// stepLocked integrates one frame and drops particles that left the surface.
func (c *Confetti) stepLocked() {
	alive := c.particles[:0]
	for _, p := range c.particles {
		p.VX *= 0.99
		p.VY += c.cfg.Gravity
		p.X += p.VX
		p.Y += p.VY
		p.Rotation += p.Spin
		if p.Y > c.cfg.Height || p.X < -c.cfg.Width || p.X > 2*c.cfg.Width {
			continue
		}
		alive = append(alive, p)
	}
	c.particles = alive
}
