package poller

import "github.com/rickgao/binance-collector/internal/model"

// BuildTasks returns the cycle's fetch tasks: the server-time task first,
// then one block per symbol kind, each block listing symbols in order.
// The result always has 1+6N elements.
func BuildTasks(symbols []string) []model.FetchTask {
	kinds := model.SymbolKinds()
	tasks := make([]model.FetchTask, 0, 1+len(kinds)*len(symbols))

	tasks = append(tasks, model.FetchTask{Kind: model.ServerTime})
	for _, kind := range kinds {
		for _, sym := range symbols {
			tasks = append(tasks, model.FetchTask{
				Kind:   kind,
				Symbol: sym,
				Source: kind.Source(),
			})
		}
	}

	return tasks
}
