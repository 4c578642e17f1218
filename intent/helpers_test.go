package intent

import "github.com/frontdesk/rag-orchestrator/logging"

func testLogger() *logging.Logger {
	return logging.New()
}
