package travelassistant

// Version is the library release version, stamped at tag time.
const Version = "0.1.0"
