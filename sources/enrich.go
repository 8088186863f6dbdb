package sources

import (
	"log"
	"sync"

	"aibc/config"
	"aibc/types"

	readability "github.com/go-shiori/go-readability"
)

// EnrichContent fills in full article text for news signals whose content is
// empty, using a worker pool. Extraction failures are logged and leave the
// signal unchanged; enrichment never drops a signal.
func EnrichContent(signals []types.Signal) {
	var wg sync.WaitGroup
	signalChan := make(chan *types.Signal, len(signals))

	for i := 0; i < config.EnrichWorkerCount; i++ {
		go func(workerID int) {
			for sig := range signalChan {
				if err := extractContent(sig); err != nil {
					log.Printf("[Worker %d] Failed to enrich %s: %v", workerID, sig.URL, err)
				}
				wg.Done()
			}
		}(i)
	}

	for i := range signals {
		sig := &signals[i]
		if sig.Source != types.SourceNews || sig.Content != "" || sig.URL == "" {
			continue
		}
		wg.Add(1)
		signalChan <- sig
	}

	wg.Wait()
	close(signalChan)
}

func extractContent(sig *types.Signal) error {
	article, err := readability.FromURL(sig.URL, config.EnrichTimeout)
	if err != nil {
		return err
	}

	sig.Content = article.TextContent
	if sig.Content == "" {
		sig.Content = article.Excerpt
	}
	return nil
}
