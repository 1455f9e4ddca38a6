package handlers

// ReturnType - JSON body for anything that isn't a search response
type ReturnType struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
