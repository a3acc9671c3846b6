package systems

// System is a TAPIS system: storage, execution or both.
type System struct {
	Id                  string         `json:"id"`
	Description         string         `json:"description,omitempty"`
	Owner               string         `json:"owner,omitempty"`
	Host                string         `json:"host,omitempty"`
	SystemType          string         `json:"systemType,omitempty"`
	RootDir             string         `json:"rootDir,omitempty"`
	CanExec             bool           `json:"canExec"`
	DefaultLogicalQueue string         `json:"batchDefaultLogicalQueue,omitempty"`
	BatchScheduler      string         `json:"batchScheduler,omitempty"`
	BatchLogicalQueues  []LogicalQueue `json:"batchLogicalQueues,omitempty"`
}

// LogicalQueue is a batch queue of an execution system.
type LogicalQueue struct {
	Name            string `json:"name"`
	HpcQueueName    string `json:"hpcQueueName"`
	MaxJobs         int    `json:"maxJobs"`
	MaxJobsPerUser  int    `json:"maxJobsPerUser"`
	MinNodeCount    int    `json:"minNodeCount"`
	MaxNodeCount    int    `json:"maxNodeCount"`
	MinCoresPerNode int    `json:"minCoresPerNode"`
	MaxCoresPerNode int    `json:"maxCoresPerNode"`
	MinMemoryMB     int    `json:"minMemoryMB"`
	MaxMemoryMB     int    `json:"maxMemoryMB"`
	MinMinutes      int    `json:"minMinutes"`
	MaxMinutes      int    `json:"maxMinutes"`
}
