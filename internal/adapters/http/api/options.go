package api

import "github.com/okian/internxp/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCertificateDir serves saved certificates from dir at /generated_certificates/.
func WithCertificateDir(dir string) Option {
	return func(s *Server) {
		s.certificateDir = dir
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
