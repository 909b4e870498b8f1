package bootstrap

import (
	"github.com/vidscribe/vidscribe/config"
)

// Config is the constraint for application config types. Any struct
// embedding config.ServiceConfig gets GetServiceConfig by promotion and
// supplies its own ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
