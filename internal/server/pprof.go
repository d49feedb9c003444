package server

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartPprofServer exposes the pprof handlers on their own listener, meant
// to stay behind the firewall or an SSH tunnel.
func StartPprofServer(addr string, logger *zap.Logger) {
	router := gin.New()
	pprof.Register(router)

	go func() {
		logger.Info("pprof listening", zap.String("addr", addr))
		if err := router.Run(addr); err != nil {
			logger.Error("pprof server stopped", zap.Error(err))
		}
	}()
}
