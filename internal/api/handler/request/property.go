package request

type CreateProperty struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}
