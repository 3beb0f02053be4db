package routers

import (
	"expvar"
	"net/http/pprof"

	"github.com/haierkeys/site-text-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PprofPrefix pprof 路由前缀，仅 debug 模式注册
const PprofPrefix = "/debug/pprof"

// runtime profiles served by pprof.Handler
var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouterWithLogger serves expvar and prometheus metrics on the private port,
// plus pprof in debug mode. gatherer defaults to prometheus.DefaultGatherer.
// NewPrivateRouterWithLogger 私有端口路由：expvar 与 prometheus 指标，debug 模式下追加 pprof
func NewPrivateRouterWithLogger(runMode string, lg *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	debug := runMode == gin.DebugMode

	r := gin.New()
	if debug {
		r.Use(gin.Recovery())
	} else {
		r.Use(middleware.Recovery(lg))
	}

	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	r.GET("/debug/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(lg),
	})))

	if !debug {
		return r
	}

	p := r.Group(PprofPrefix)
	p.GET("/", gin.WrapF(pprof.Index))
	p.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	p.GET("/profile", gin.WrapF(pprof.Profile))
	p.GET("/symbol", gin.WrapF(pprof.Symbol))
	p.POST("/symbol", gin.WrapF(pprof.Symbol))
	p.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range pprofProfiles {
		p.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
	return r
}
