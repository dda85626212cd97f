package types

// Asset is a model file discovered on disk (bundled samples).
type Asset struct {
	// File name, used as identifier.
	// example: robot.usdz
	ID string `json:"id" example:"robot.usdz"`
	// Display name (file name without extension).
	// example: robot
	Name string `json:"name" example:"robot"`
	// Absolute path to the file.
	// example: /opt/forge3d/bundled/robot.usdz
	Path string `json:"path" example:"/opt/forge3d/bundled/robot.usdz"`
	// Lowercase format extension.
	// example: usdz
	Format string `json:"format" example:"usdz"`
	// Size in bytes.
	// example: 1048576
	Size int64 `json:"size" example:"1048576"`
}
