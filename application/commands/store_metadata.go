package commands

import (
	"metadata-scanner/application/services"
	"metadata-scanner/pkg/utils"
)

// StoreMetadataCommand asks for one metadata scan of an app. The handler
// attaches the run's result to the command.
type StoreMetadataCommand struct {
	AppID string `json:"appId" validate:"required,appid"`

	result *services.ScanResult
}

// Validate validates the command
func (c *StoreMetadataCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Complete records the result of the run.
func (c *StoreMetadataCommand) Complete(result *services.ScanResult) {
	c.result = result
}

// Result returns the recorded result, or nil before the command ran.
func (c *StoreMetadataCommand) Result() *services.ScanResult {
	return c.result
}
