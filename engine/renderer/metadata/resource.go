package metadata

/**
 * @brief The raw bytes read from storage for one load request.
 */
type Resource struct {
	/** @brief The name of the resource, the base file name. */
	Name string
	/** @brief The full path (or URL) the resource was read from. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data []byte
}
