package asp

// Version of the asp engine. The major number tracks the asx source format
// (format 3, "pax3" lineage); minor/patch follow this implementation.
const Version = "3.6.0"
