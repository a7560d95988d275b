package metadata

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A general job that does not have any specific thread requirements.
	 * This means it matters little which job thread this job runs on.
	 */
	JOB_TYPE_GENERAL JobType = 0x02
	/**
	 * @brief A resource loading job, reading and decoding files.
	 */
	JOB_TYPE_RESOURCE_LOAD JobType = 0x04
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief The type of job. */
	JobType JobType
	/** @brief A readable name used in logs. */
	Name string
	/** @brief Invoked on a worker when the job starts. Required. */
	OnStart func() error
	/** @brief Invoked when OnStart returns nil. Optional. */
	OnComplete func()
	/** @brief Invoked when OnStart fails or panics. Optional. */
	OnFailure func(err error)
}
