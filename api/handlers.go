package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"diskwarden/internal/device"
	"diskwarden/internal/scan"
	"diskwarden/internal/smart"
)

const (
	requestTimeout = 10 * time.Second
	eraseTimeout   = 60 * time.Second

	// benchmarkSize is the sequential read window used to measure
	// throughput.
	benchmarkSize = 1024 * 1024
)

// Drive list endpoint
func (s *Server) getDrives(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	devices, err := s.gateway.ListDevices(ctx)
	if err != nil {
		return gatewayError(c, err)
	}

	drives := make([]string, 0, len(devices))
	for _, d := range devices {
		drives = append(drives, d.Name)
	}
	return c.JSON(fiber.Map{"drives": drives})
}

// SMART telemetry endpoint
func (s *Server) getSmart(c *fiber.Ctx) error {
	drive := c.Params("device")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	raw, err := s.gateway.FetchSmartText(ctx, drive)
	if err != nil {
		return gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"drive":      drive,
		"smart_data": smart.Parse(raw),
	})
}

// Scan start endpoint. Returns immediately; progress is delivered over the
// WebSocket event channel.
func (s *Server) startScan(c *fiber.Ctx) error {
	drive := c.Params("device")

	if err := s.supervisor.Start(drive); err != nil {
		if errors.Is(err, scan.ErrScanRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "scan_already_running",
				"drive": drive,
			})
		}
		if errors.Is(err, device.ErrInvalidName) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"status": "scan_started", "drive": drive})
}

// Scan cancel endpoint, idempotent.
func (s *Server) cancelScan(c *fiber.Ctx) error {
	drive := c.Params("device")
	s.supervisor.Cancel(drive)
	return c.JSON(fiber.Map{"status": "scan_cancelled", "drive": drive})
}

// Scan status endpoint for late polling.
func (s *Server) getScanStatus(c *fiber.Ctx) error {
	drive := c.Params("device")

	snapshot, err := s.supervisor.Status(drive)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no_scan_for_drive",
			"drive": drive,
		})
	}
	return c.JSON(snapshot)
}

// Secure erase endpoint. Destructive; only ever reachable through this
// explicit request.
func (s *Server) secureErase(c *fiber.Ctx) error {
	drive := c.Params("device")

	ctx, cancel := context.WithTimeout(context.Background(), eraseTimeout)
	defer cancel()

	out, err := s.gateway.SecureErase(ctx, drive)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(fiber.Map{"drive": drive, "message": out})
}

// Read benchmark endpoint
func (s *Server) benchmark(c *fiber.Ctx) error {
	drive := c.Params("device")

	dev, err := s.gateway.Open(drive)
	if err != nil {
		return gatewayError(c, err)
	}
	defer dev.Close()

	speed, err := device.BenchmarkRead(dev, benchmarkSize)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(fiber.Map{
		"drive":      drive,
		"read_speed": fmt.Sprintf("%.2f MB/s", speed),
	})
}

// Filesystem usage endpoint
func (s *Server) getDiskUsage(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	info, err := s.usageReader.GetInfo(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(info)
}

// gatewayError maps the device error taxonomy onto HTTP statuses.
func gatewayError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, device.ErrInvalidName):
		status = fiber.StatusBadRequest
	case errors.Is(err, device.ErrAccessDenied):
		status = fiber.StatusForbidden
	case errors.Is(err, device.ErrToolUnavailable), errors.Is(err, device.ErrUnsupported):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, device.ErrDeviceUnavailable):
		status = fiber.StatusNotFound
	default:
		var toolErr *device.ToolError
		if errors.As(err, &toolErr) {
			status = fiber.StatusBadGateway
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
