package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orgoj/paplogger/internal/logger"
)

// LoggerHandlerDeps holds dependencies for the logger admin handlers.
type LoggerHandlerDeps struct {
	Facade *logger.Facade
}

type levelRequest struct {
	Level string `json:"level" binding:"required"`
}

type verboseRequest struct {
	// null resets the flag to "derive from level"
	Verbose *bool `json:"verbose"`
}

type fileRequest struct {
	// null or "" detaches the file sink
	Path *string `json:"path"`
}

type syslogRequest struct {
	Host *string `json:"host"`
	Port int     `json:"port" binding:"omitempty,min=1,max=65535"`
}

type hostnamePrefixRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type logRequest struct {
	Level   string `json:"level" binding:"required"`
	Message string `json:"message" binding:"required"`
	Context string `json:"context"`
}

// stateResponse returns the facade state, with the sink outcome when a
// sink property was written.
func stateResponse(c *gin.Context, f *logger.Facade, sink *logger.SinkState) {
	body := gin.H{"state": f.State()}
	if sink != nil {
		body["sink"] = sink.String()
	}
	c.JSON(http.StatusOK, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// NewStateHandler serves GET /logger.
func NewStateHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stateResponse(c, deps.Facade, nil)
	}
}

// NewLevelHandler serves PUT /logger/level.
func NewLevelHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req levelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		level, err := logger.ParseLevel(req.Level)
		if err != nil {
			badRequest(c, err)
			return
		}
		if err := deps.Facade.SetLevel(level); err != nil {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		stateResponse(c, deps.Facade, nil)
	}
}

// NewVerboseHandler serves PUT /logger/verbose.
func NewVerboseHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verboseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		deps.Facade.SetVerbose(logger.VerbosityFromBool(req.Verbose))
		stateResponse(c, deps.Facade, nil)
	}
}

// NewFileHandler serves PUT /logger/file.
func NewFileHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		path := ""
		if req.Path != nil {
			path = *req.Path
		}
		state := deps.Facade.SetLogFile(path)
		stateResponse(c, deps.Facade, &state)
	}
}

// NewSyslogHandler serves PUT /logger/syslog. The port is applied before
// the host so that a single request dials only the final address.
func NewSyslogHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req syslogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		state := logger.SinkDetached
		if deps.Facade.HasSyslogSink() {
			state = logger.SinkAttached
		}
		if req.Port != 0 {
			if req.Host != nil {
				// Detach first so the new port is not dialed against the old host.
				deps.Facade.SetSyslogHost("")
			}
			state = deps.Facade.SetSyslogPort(req.Port)
		}
		if req.Host != nil {
			state = deps.Facade.SetSyslogHost(*req.Host)
		}
		stateResponse(c, deps.Facade, &state)
	}
}

// NewHostnamePrefixHandler serves PUT /logger/hostname-prefix.
func NewHostnamePrefixHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req hostnamePrefixRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		state := deps.Facade.SetHostnamePrefix(*req.Enabled)
		stateResponse(c, deps.Facade, &state)
	}
}

// NewLogHandler serves POST /logger/log, emitting one record.
func NewLogHandler(deps LoggerHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req logRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		level, err := logger.ParseLevel(req.Level)
		if err != nil {
			badRequest(c, err)
			return
		}
		context := req.Context
		if context == "" {
			context = "remote"
		}
		deps.Facade.Named(context).Log(level, req.Message)
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "emitted": deps.Facade.Enabled(level)})
	}
}
