package httpapi

import (
	"querygguf/internal/launcher"
	"querygguf/internal/mode"
	"querygguf/internal/store"
	"querygguf/pkg/types"
)

// StoreService serves the API from a mode store, re-reading the
// configuration file on every call.
type StoreService struct {
	Store *store.Store
}

// NewStoreService wraps s.
func NewStoreService(s *store.Store) *StoreService { return &StoreService{Store: s} }

func (s *StoreService) ListModes() types.ModesResponse {
	def, _ := s.Store.DefaultIndex()
	entries := s.Store.List()
	resp := types.ModesResponse{Modes: make([]types.ModeView, 0, len(entries)), DefaultIndex: def}
	for _, e := range entries {
		resp.Modes = append(resp.Modes, View(e, def))
	}
	return resp
}

func (s *StoreService) Mode(position int) (types.ModeView, error) {
	e, err := s.Store.Get(position)
	if err != nil {
		return types.ModeView{}, err
	}
	def, _ := s.Store.DefaultIndex()
	return View(e, def), nil
}

func (s *StoreService) Command(position int) (types.CommandResponse, error) {
	e, err := s.Store.Get(position)
	if err != nil {
		return types.CommandResponse{}, err
	}
	inv := launcher.Invocation{CLIPath: s.Store.Settings().LlamaCLIPath, Record: e.Record}
	return types.CommandResponse{Argv: inv.Argv(), Command: inv.String()}, nil
}

// View converts a store entry to its JSON shape.
func View(e store.Entry, defaultIndex int) types.ModeView {
	return types.ModeView{
		Position:    e.Position,
		Index:       e.Index,
		Name:        e.Record.Name,
		Description: e.Record.Description,
		ModelPath:   e.Record.ModelPath,
		PromptPath:  e.Record.PromptPath,
		Default:     defaultIndex > 0 && e.Index == defaultIndex,
		Parameters:  parameters(e.Record.Parameters),
	}
}

func parameters(p mode.Parameters) types.ModeParameters {
	return types.ModeParameters{
		Temperature:      p.Temperature,
		TopK:             p.TopK,
		TopP:             p.TopP,
		ContextSize:      p.ContextSize,
		Threads:          p.ThreadCount,
		GPULayers:        p.GPULayers,
		InteractiveFirst: p.InteractiveFirst,
	}
}
